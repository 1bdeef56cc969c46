package api

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
}

// Build creates a driver.
func (b DriverBuilder) Build(name string) Driver {
	return &driverImpl{name: name}
}
