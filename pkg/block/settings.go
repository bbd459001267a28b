package block

// Settings is the per-render configuration consumed by output adapters
// (content width, palette, fonts, document title and so on).
type Settings map[string]any

// String returns the setting at key as a string.
func (s Settings) String(key, def string) string { return Props(s).String(key, def) }

// Int returns the setting at key as an int.
func (s Settings) Int(key string, def int) int { return Props(s).Int(key, def) }

// Bool returns the setting at key as a bool.
func (s Settings) Bool(key string, def bool) bool { return Props(s).Bool(key, def) }

// Merge returns defaults overlaid with s. Neither input is modified.
func (s Settings) Merge(defaults Settings) Settings {
	return Settings(Merge(Props(defaults), Props(s)))
}
