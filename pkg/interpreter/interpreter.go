package interpreter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"jscr/interpreter-go/pkg/ast"
	"jscr/interpreter-go/pkg/observability"
	"jscr/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds recursion when Options.MaxCallDepth is zero.
const DefaultMaxCallDepth = 10000

// Importer locates and parses the module named by an import path as seen
// from the importing file. It returns the module's canonical file path.
type Importer interface {
	Resolve(ctx context.Context, from string, path []string) (string, *ast.Program, error)
}

// Options configures an Interpreter.
type Options struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
	// LenientArithmetic makes arithmetic on non-integer operands yield null
	// instead of failing.
	LenientArithmetic bool
	MaxCallDepth      int
	Importer          Importer
	Executor          Executor
	Logger            *slog.Logger
}

// Interpreter evaluates programs. It drives one evaluation at a time;
// concurrent Execute calls are serialized.
type Interpreter struct {
	stdout       io.Writer
	lenient      bool
	maxCallDepth int
	importer     Importer
	executor     Executor
	logger       *slog.Logger
	natives      []*runtime.NativeFunctionValue

	mu    sync.Mutex
	state *evalState
}

// evalState is the per-execution bookkeeping.
type evalState struct {
	ctx     context.Context
	depth   int
	modules map[string]*runtime.Environment
	loading map[string]bool
}

func newEvalState(ctx context.Context) *evalState {
	return &evalState{
		ctx:     ctx,
		modules: make(map[string]*runtime.Environment),
		loading: make(map[string]bool),
	}
}

func New(opts Options) *Interpreter {
	i := &Interpreter{
		stdout:       opts.Stdout,
		lenient:      opts.LenientArithmetic,
		maxCallDepth: opts.MaxCallDepth,
		importer:     opts.Importer,
		executor:     opts.Executor,
		logger:       opts.Logger,
	}
	if i.stdout == nil {
		i.stdout = os.Stdout
	}
	if i.maxCallDepth <= 0 {
		i.maxCallDepth = DefaultMaxCallDepth
	}
	if i.executor == nil {
		i.executor = NewGoroutineExecutor()
	}
	if i.logger == nil {
		i.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	i.natives = builtinNatives()
	return i
}

// NewGlobalEnvironment creates a root scope for file seeded with the
// builtins.
func (i *Interpreter) NewGlobalEnvironment(file string) *runtime.Environment {
	env := runtime.NewGlobalEnvironment(file)
	i.seed(env)
	return env
}

// newModuleEnvironment creates the imported scope a module is evaluated in.
func (i *Interpreter) newModuleEnvironment(file string) *runtime.Environment {
	env := runtime.NewImportedEnvironment(nil, file)
	i.seed(env)
	return env
}

func (i *Interpreter) seed(env *runtime.Environment) {
	constants := []struct {
		name  string
		value runtime.Value
	}{
		{"true", runtime.BoolValue{Val: true}},
		{"false", runtime.BoolValue{Val: false}},
		{"null", runtime.NullValue{}},
	}
	for _, c := range constants {
		_ = env.DeclareVar(&runtime.Variable{
			Name:       c.name,
			Type:       runtime.DeclaredTypeOf(c.value),
			Value:      c.value,
			IsConstant: true,
		})
	}
	for _, fn := range i.natives {
		_ = env.DeclareVar(&runtime.Variable{
			Name:       fn.Name,
			Type:       runtime.FunctionOf(-1),
			Value:      fn,
			IsConstant: true,
		})
	}
}

// Evaluate evaluates a single node against env outside of any program run.
func (i *Interpreter) Evaluate(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = newEvalState(context.Background())
	defer func() { i.state = nil }()

	switch n := node.(type) {
	case *ast.Program:
		return i.evaluateProgram(n, env)
	case ast.Statement:
		val, err := i.evaluateStatement(n, env)
		if _, ok := err.(returnSignal); ok {
			return nil, fail(env, node, ErrReturnOutside)
		}
		return val, err
	default:
		return nil, failf(env, node, ErrUnsupported, "unsupported node type: %s", node.NodeType())
	}
}

// EvaluateProgram evaluates program's statements in env, returning the value
// of the last one. ctx is checked before each top-level statement; once it is
// done evaluation stops and yields null.
func (i *Interpreter) EvaluateProgram(ctx context.Context, program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = newEvalState(ctx)
	defer func() { i.state = nil }()

	start := time.Now()
	val, err := i.evaluateProgram(program, env)
	observability.ExecutionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.RuntimeErrors.Inc()
	}
	return val, err
}

// Execute runs program in a fresh global environment.
func (i *Interpreter) Execute(ctx context.Context, program *ast.Program) (runtime.Value, error) {
	return i.EvaluateProgram(ctx, program, i.NewGlobalEnvironment(program.File))
}

// ExecuteAsync runs Execute on the configured executor.
func (i *Interpreter) ExecuteAsync(ctx context.Context, program *ast.Program) *Handle {
	handle := i.executor.Run(ctx, func(ctx context.Context) (runtime.Value, error) {
		return i.Execute(ctx, program)
	})
	i.logger.Debug("execution scheduled", "id", handle.ID, "file", program.File)
	return handle
}

// PendingExecutions reports runs started with ExecuteAsync that have not
// finished yet.
func (i *Interpreter) PendingExecutions() int {
	return i.executor.PendingTasks()
}

func (i *Interpreter) evaluateProgram(program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.NullValue{}
	for _, stmt := range program.Body {
		if i.cancelled() {
			observability.CancelledExecutions.Inc()
			return runtime.NullValue{}, nil
		}
		val, err := i.evaluateStatement(stmt, env)
		observability.StatementsEvaluated.Inc()
		if err != nil {
			var ret returnSignal
			if errors.As(err, &ret) {
				return nil, fail(env, stmt, ErrReturnOutside)
			}
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (i *Interpreter) cancelled() bool {
	return i.state != nil && i.state.ctx != nil && i.state.ctx.Err() != nil
}
