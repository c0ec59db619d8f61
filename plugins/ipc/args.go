package ipc

import "fmt"

// StringArg extracts a required string argument from args.
// Returns an error if the argument is missing or not a string.
func StringArg(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("%s argument required", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s argument must be a string", name)
	}
	return s, nil
}

// StringMap returns the string-valued entries of args. Other values are
// reported as an error naming the first offending key.
func StringMap(args map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for k, v := range args {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s argument must be a string, got %T", k, v)
		}
		out[k] = s
	}
	return out, nil
}
