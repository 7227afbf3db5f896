package interpreter

import (
	"fmt"
	"strings"

	"jscr/interpreter-go/pkg/runtime"
)

func builtinNatives() []*runtime.NativeFunctionValue {
	return []*runtime.NativeFunctionValue{
		{Name: "print", ReturnType: runtime.NullType, Impl: nativePrint},
	}
}

// nativePrint joins its arguments with single spaces and writes them as one
// line.
func nativePrint(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, arg := range args {
		parts[idx] = runtime.Format(arg)
	}
	if _, err := fmt.Fprintln(ctx.Stdout, strings.Join(parts, " ")); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return runtime.NullValue{}, nil
}

// RegisterNative exposes a host function to every global environment created
// after the call. A later registration under the same name replaces the
// earlier one.
func (i *Interpreter) RegisterNative(name string, returnType runtime.Type, impl runtime.NativeFunc) {
	fn := &runtime.NativeFunctionValue{Name: name, ReturnType: returnType, Impl: impl}
	for idx, existing := range i.natives {
		if existing.Name == name {
			i.natives[idx] = fn
			return
		}
	}
	i.natives = append(i.natives, fn)
}
