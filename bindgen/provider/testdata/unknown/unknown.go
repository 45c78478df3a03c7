package unknown

//hostbind:namespace
type Service struct{}

//hostbind:permision auth.Admin()
func (Service) Delete(id string) {}
