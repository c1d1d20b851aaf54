package cache

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a cached API response.
	HTTPKey(namespace, key string) string
	// PrintFileKey keys a rendered print file by its inputs.
	PrintFileKey(imageHash string, opts PrintFileKeyOpts) string
	// SessionKey keys a stored configurator session.
	SessionKey(id string) string
}

// PrintFileKeyOpts lists everything besides the image that changes a
// rendered print file. Region and Placement are hashed as JSON.
type PrintFileKeyOpts struct {
	Region        any     `json:"region"`
	Placement     any     `json:"placement"`
	Format        string  `json:"format"`
	Interpolation string  `json:"interpolation"`
	DPI           float64 `json:"dpi"`
}

// DefaultKeyer is the Keyer used unless a scope is needed.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// PrintFileKey returns "printfile:<hash>".
func (DefaultKeyer) PrintFileKey(imageHash string, opts PrintFileKeyOpts) string {
	return hashKey("printfile", imageHash, opts)
}

// SessionKey returns "session:<id>".
func (DefaultKeyer) SessionKey(id string) string { return "session:" + id }
