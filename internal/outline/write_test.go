package outline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteApplicationRoundTrips(t *testing.T) {
	o, err := Parse([]byte(appJSON))
	require.NoError(t, err)

	out, err := Write(o)
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	require.True(t, reparsed.IsApplication())
	require.Equal(t, o.Application.Platform, reparsed.Application.Platform)
	require.Len(t, reparsed.Application.Direct, len(o.Application.Direct))
}

func TestWritePackageRoundTrips(t *testing.T) {
	o, err := Parse([]byte(pkgJSON))
	require.NoError(t, err)

	out, err := Write(o)
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	require.True(t, reparsed.IsPackage())
	require.Equal(t, o.Package.Name, reparsed.Package.Name)
	require.Len(t, reparsed.Package.ExposedModules.Flatten(), len(o.Package.ExposedModules.Flatten()))
}

func TestWritePackageWithBumpedVersion(t *testing.T) {
	o, err := Parse([]byte(pkgJSON))
	require.NoError(t, err)

	o.Package.Version = o.Package.Version.NextMinor()
	out, err := Write(o)
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, o.Package.Version, reparsed.Package.Version)
}
