package component

import "context"

// Instance is one invocation of a Class. It is created per call and never
// shared across calls.
type Instance struct {
	class    *Class
	props    Props
	children Children
}

// Class returns the class that built the instance.
func (in *Instance) Class() *Class {
	return in.class
}

// Name returns the class name.
func (in *Instance) Name() string {
	return in.class.name
}

// Props returns a copy of the instance props.
func (in *Instance) Props() Props {
	return in.props.Clone()
}

// Prop returns one prop without copying the bag.
func (in *Instance) Prop(key string) any {
	return in.props[key]
}

// String, Int and Bool read props with Props semantics.
func (in *Instance) String(key string) string  { return in.props.String(key) }
func (in *Instance) Int(key string) (int, bool) { return in.props.Int(key) }
func (in *Instance) Bool(key string) bool       { return in.props.Bool(key) }

// HasChildren reports whether a continuation was supplied.
func (in *Instance) HasChildren() bool {
	return in.children != nil
}

// Children invokes the continuation with payload. Without a continuation it
// returns the class fallback.
func (in *Instance) Children(ctx context.Context, payload any) (any, error) {
	if in.children == nil {
		return in.class.fallback(in), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return in.children(ctx, payload, in)
}

// Yield invokes the continuation with the instance as payload.
func (in *Instance) Yield(ctx context.Context) (any, error) {
	return in.Children(ctx, in)
}

// YieldText is Yield followed by Text.
func (in *Instance) YieldText(ctx context.Context) (string, error) {
	out, err := in.Yield(ctx)
	if err != nil {
		return "", err
	}
	return Text(out), nil
}
