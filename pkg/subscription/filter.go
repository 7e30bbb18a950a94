package subscription

// KeyFilter wraps fn so that it is only called for updates containing at
// least one of keys. With no keys, fn is returned unchanged.
func KeyFilter(keys []string, fn Listener) Listener {
	if len(keys) == 0 {
		return fn
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return func(update Map) {
		if touches(update, set) {
			fn(update)
		}
	}
}

// touches reports whether update contains at least one key of set.
func touches(update Map, set map[string]struct{}) bool {
	for k := range update {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
