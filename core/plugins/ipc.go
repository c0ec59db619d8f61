package plugins

import (
	"github.com/FocuswithJustin/anchorleak/plugins/ipc"
)

// ListResult is the result of a list command.
type ListResult struct {
	Operations []*OperationDescriptor `json:"operations"`
}

// Handle dispatches one IPC request against the registry. Failures are
// reported inside the response, never as a Go error, so the host can
// forward the message verbatim.
//
// Commands:
//   - list: all descriptors
//   - describe: args.operation
//   - run: args.operation plus the operation's named args
func (r *Registry) Handle(req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CommandList:
		return ipc.OK(&ListResult{Operations: r.List()})

	case ipc.CommandDescribe:
		op, err := r.lookup(req.Args)
		if err != nil {
			return ipc.Error(err.Error())
		}
		return ipc.OK(op.Descriptor())

	case ipc.CommandRun:
		op, err := r.lookup(req.Args)
		if err != nil {
			return ipc.Error(err.Error())
		}
		named, err := ipc.StringMap(withoutKey(req.Args, "operation"))
		if err != nil {
			return ipc.Error(err.Error())
		}
		result, err := r.RunPositional(op, op.Descriptor().Positional(named))
		if err != nil {
			return ipc.Error(err.Error())
		}
		return ipc.OK(result)

	default:
		return ipc.Errorf("unknown command: %s", req.Command)
	}
}

func (r *Registry) lookup(args map[string]interface{}) (Operation, error) {
	id, err := ipc.StringArg(args, "operation")
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

func withoutKey(args map[string]interface{}, key string) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		if k != key {
			out[k] = v
		}
	}
	return out
}
