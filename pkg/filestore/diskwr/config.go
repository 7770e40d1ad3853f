package diskwr

// Config defines the configuration options for the disk store.
type Config struct {
	// Root is the directory all objects are stored under.
	Root string `yaml:"root" default:"/tmp/filestash"`
}
