package version

import "os"

// DefaultServiceName is reported when LATEBINDING_SERVICE_NAME is not set.
const DefaultServiceName = "latebinding"

// ServiceName returns the service name used for traces.
func ServiceName() string {
	name := os.Getenv("LATEBINDING_SERVICE_NAME")
	if name == "" {
		return DefaultServiceName
	}

	return name
}
