// Package command defines the JSON command objects exchanged with a
// captive web view, and the handler capability the bridge dispatches them
// through.
package command

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Object is a decoded JSON command or response. There is no required
// schema; interpretation belongs to handlers. The shipped handlers follow
// the convention of a "command" string member naming the operation and a
// "parameters" object member carrying its arguments.
type Object map[string]any

// Command returns the "command" member, or "" when it's absent or not a
// string.
func (o Object) Command() string {
	name, _ := o["command"].(string)
	return name
}

// Parameters returns the "parameters" member, or nil when it's absent or
// not an object.
func (o Object) Parameters() Object {
	return asObject(o["parameters"])
}

// asObject coerces a decoded JSON value to an Object. Values built in code
// may already be Object typed; values out of json.Unmarshal are plain
// maps. Anything else coerces to nil, which reads as an empty Object.
func asObject(value any) Object {
	switch object := value.(type) {
	case Object:
		return object
	case map[string]any:
		return Object(object)
	}
	return nil
}

// Handler is one link of the bridge's dispatch chain.
//
// Returning a nil Object with a nil error means the handler doesn't
// recognise the command and the next handler should be tried. A non-nil
// error is an internal handler fault and stops the chain. Handlers must
// tolerate commands they don't recognise: inspect and pass, don't fail.
type Handler interface {
	Handle(ctx context.Context, command Object) (Object, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, command Object) (Object, error)

func (f HandlerFunc) Handle(ctx context.Context, command Object) (Object, error) {
	return f(ctx, command)
}

type loggerKey struct{}

// NewContext returns a copy of ctx carrying a request-scoped log entry for
// handlers to use.
func NewContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// Logger returns the log entry attached by NewContext. Handlers can always
// log: without an attached entry it falls back to the standard logger.
func Logger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
