package tools

// StringArg extracts a required string argument.
func StringArg(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", NewValidationErrorf("missing required argument: %s", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", NewValidationErrorf("%s must be a string", key)
	}
	if value == "" {
		return "", NewValidationErrorf("%s cannot be empty", key)
	}
	return value, nil
}

// OptionalStringArg extracts an optional string argument, returning the
// fallback when absent.
func OptionalStringArg(params map[string]any, key, fallback string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", NewValidationErrorf("%s must be a string", key)
	}
	return value, nil
}

// OptionalBoolArg extracts an optional boolean argument, returning the
// fallback when absent.
func OptionalBoolArg(params map[string]any, key string, fallback bool) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, NewValidationErrorf("%s must be a boolean", key)
	}
	return value, nil
}

// OptionalIntArg extracts an optional integer argument. JSON decoding
// delivers numbers as float64, so both forms are accepted.
func OptionalIntArg(params map[string]any, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, NewValidationErrorf("%s must be an integer", key)
	}
}
