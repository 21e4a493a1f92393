package driver

// Select returns the interpreters that run for a frame with the given code.
//
// For a known device, wildcard-device interpreters come first (unless the
// device's family opts out of overlays) followed by the device's own. For an
// unknown device only the wildcard set is certain; the interpreters registered
// for exactly code are added when they all agree on one device match.
func Select(r *Registry, device string, code byte) []Interpreter {
	if device != "" {
		var out []Interpreter
		if !r.SkipsWildcardOverlays(device) {
			out = append(out, wildcards(r, code)...)
		}
		for _, it := range r.interpreters {
			if !it.Device.IsAny() && it.Device.Matches(device) && it.Code.Matches(code) {
				out = append(out, it)
			}
		}
		return out
	}

	out := wildcards(r, code)
	candidates := r.registeredFor(code)
	if len(candidates) == 0 {
		return out
	}
	first := candidates[0].Device
	for _, it := range candidates[1:] {
		if it.Device != first {
			return out
		}
	}
	for _, it := range candidates {
		if !containsInterpreter(out, it) {
			out = append(out, it)
		}
	}
	return out
}

// AllGeneric reports whether none of active is scoped to a specific frame
// code. Such a frame gets an Unsupported marker.
func AllGeneric(active []Interpreter) bool {
	for _, it := range active {
		if !it.Code.IsAny() {
			return false
		}
	}
	return true
}

func wildcards(r *Registry, code byte) []Interpreter {
	var out []Interpreter
	for _, it := range r.interpreters {
		if it.Device.IsAny() && it.Code.Matches(code) {
			out = append(out, it)
		}
	}
	return out
}

func containsInterpreter(list []Interpreter, it Interpreter) bool {
	for _, x := range list {
		if x.Name == it.Name && x.Device == it.Device && x.Code == it.Code {
			return true
		}
	}
	return false
}
