package strategy

import "github.com/kklipsch/mapbench/workload"

// SetString stores a string value under key.
func SetString(m map[string]any, key, val string) {
	m[key] = val
}

// SetInt32 stores a 32-bit integer value under key.
func SetInt32(m map[string]any, key string, val int32) {
	m[key] = val
}

// SetNested stores a nested container under key.
func SetNested(m map[string]any, key string, val map[string]any) {
	m[key] = val
}

func buildLiteral() map[string]any {
	return map[string]any{
		"foo": "bar",
		"moo": int32(7),
		"goo": map[string]any{"boo": "baz"},
	}
}

func buildIncremental() map[string]any {
	m := make(map[string]any)
	m["foo"] = "bar"
	m["moo"] = int32(7)
	m["goo"] = map[string]any{"boo": "baz"}

	return m
}

func buildPrealloc() map[string]any {
	m := make(map[string]any, 3)
	m["foo"] = "bar"
	m["moo"] = int32(7)
	m["goo"] = map[string]any{"boo": "baz"}

	return m
}

func buildWithSetters() map[string]any {
	return buildSetters(SetString, SetInt32, SetNested)
}

// buildSetters receives the setters as function values so each
// assignment goes through a real indirect call rather than an inlinable
// direct one.
func buildSetters(
	setString func(map[string]any, string, string),
	setInt32 func(map[string]any, string, int32),
	setNested func(map[string]any, string, map[string]any),
) map[string]any {
	m := make(map[string]any)
	setString(m, "foo", "bar")
	setInt32(m, "moo", 7)
	setNested(m, "goo", map[string]any{"boo": "baz"})

	return m
}

func sizedIncremental(entries []workload.Entry) map[string]any {
	m := make(map[string]any)
	for _, e := range entries {
		setEntry(m, e)
	}

	return m
}

func sizedPrealloc(entries []workload.Entry) map[string]any {
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		setEntry(m, e)
	}

	return m
}

func sizedWithSetters(entries []workload.Entry) map[string]any {
	return sizedSetters(entries, SetString, SetInt32, SetNested)
}

func sizedSetters(
	entries []workload.Entry,
	setString func(map[string]any, string, string),
	setInt32 func(map[string]any, string, int32),
	setNested func(map[string]any, string, map[string]any),
) map[string]any {
	m := make(map[string]any)

	for _, e := range entries {
		switch v := e.Value.(type) {
		case string:
			setString(m, e.Key, v)
		case int32:
			setInt32(m, e.Key, v)
		case map[string]string:
			setNested(m, e.Key, nestedContainer(v))
		}
	}

	return m
}

func setEntry(m map[string]any, e workload.Entry) {
	switch v := e.Value.(type) {
	case string:
		m[e.Key] = v
	case int32:
		m[e.Key] = v
	case map[string]string:
		m[e.Key] = nestedContainer(v)
	}
}

func nestedContainer(src map[string]string) map[string]any {
	n := make(map[string]any, len(src))
	for k, v := range src {
		n[k] = v
	}

	return n
}
