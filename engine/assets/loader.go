package assets

// Loader reads one asset file. It runs on a job worker, so implementations
// must not touch the scene or any state.
type Loader interface {
	Load(path string) (interface{}, error) // `interface{}` here allows loaders to return various asset types
}
