package hosttheory

import (
	"os"
	"runtime"
)

// Platform identifies where the host process is running.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "windows"

	// PlatformLambda is reported when the process runs inside an AWS
	// Lambda execution environment.
	PlatformLambda Platform = "lambda"

	// PlatformContainer is reported when the process runs inside a
	// container but not inside a managed function runtime.
	PlatformContainer Platform = "container"
)

// DetectPlatform inspects the process environment and returns the platform
// the host is running on. Managed runtimes win over the bare OS: Lambda is
// checked first, then container markers, then runtime.GOOS.
func DetectPlatform() Platform {
	if isLambdaEnv() {
		return PlatformLambda
	}
	if isContainerEnv() {
		return PlatformContainer
	}
	return Platform(runtime.GOOS)
}

func isLambdaEnv() bool {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return true
	}
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		return true
	}
	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		return true
	}
	if os.Getenv("AWS_EXECUTION_ENV") != "" {
		return true
	}
	return false
}

func isContainerEnv() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
