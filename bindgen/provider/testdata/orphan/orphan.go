package orphan

// Helper is not a namespace.
type Helper struct{}

//hostbind:permission auth.Admin()
func (Helper) Run() {}
