// platform.go
package platform

import (
	"fmt"
	"runtime"
)

// Platform represents a target platform pair as used by channel catalogs
// and the binary cache, e.g. "x86_64-linux".
type Platform string

const (
	X8664Linux   Platform = "x86_64-linux"
	I686Linux    Platform = "i686-linux"
	Aarch64Linux Platform = "aarch64-linux"
	Armv7lLinux  Platform = "armv7l-linux"

	X8664Darwin   Platform = "x86_64-darwin"
	Aarch64Darwin Platform = "aarch64-darwin"
)

// All contains the platforms shed knows how to resolve for.
var All = []Platform{
	X8664Linux,
	I686Linux,
	Aarch64Linux,
	Armv7lLinux,
	X8664Darwin,
	Aarch64Darwin,
}

// Detect returns the platform of the running process.
func Detect() (Platform, error) {
	switch runtime.GOOS {
	case "linux":
		switch runtime.GOARCH {
		case "amd64":
			return X8664Linux, nil
		case "386":
			return I686Linux, nil
		case "arm64":
			return Aarch64Linux, nil
		case "arm":
			return Armv7lLinux, nil
		default:
			return "", fmt.Errorf("unsupported Linux architecture: %s", runtime.GOARCH)
		}
	case "darwin":
		switch runtime.GOARCH {
		case "amd64":
			return X8664Darwin, nil
		case "arm64":
			return Aarch64Darwin, nil
		default:
			return "", fmt.Errorf("unsupported Darwin architecture: %s", runtime.GOARCH)
		}
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// String returns the string representation of the platform.
func (p Platform) String() string {
	return string(p)
}

// IsValid checks if the platform is a known valid platform.
func (p Platform) IsValid() bool {
	for _, valid := range All {
		if p == valid {
			return true
		}
	}
	return false
}

// OS returns the operating system half of the platform pair.
func (p Platform) OS() string {
	switch p {
	case X8664Darwin, Aarch64Darwin:
		return "darwin"
	default:
		return "linux"
	}
}

// LibraryPathVariable returns the dynamic-linker search path variable
// name for the platform.
func (p Platform) LibraryPathVariable() string {
	if p.OS() == "darwin" {
		return "DYLD_LIBRARY_PATH"
	}
	return "LD_LIBRARY_PATH"
}
