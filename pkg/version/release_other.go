//go:build !unix

package version

func kernelRelease() string {
	return ""
}
