package detect

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/source"
)

const hklmUninstall = `HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

type uninstallEntry struct {
	hive    source.Hive
	wow64   bool
	strings map[string]string
	dwords  map[string]uint32
}

func (f *fixture) addUninstall(name string, e uninstallEntry) {
	path := uninstallKey
	if e.wow64 {
		path = uninstallKeyWow64
	}
	path += `\` + name
	f.reg.CreateKey(e.hive, source.ViewDefault, path)
	for k, v := range e.strings {
		f.reg.SetString(e.hive, source.ViewDefault, path, k, v)
	}
	for k, v := range e.dwords {
		f.reg.SetUint32(e.hive, source.ViewDefault, path, k, v)
	}
}

func TestControlPanel_InstallLocation(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, `C:\Prog`)
	f.addUninstall("Tool", uninstallEntry{strings: map[string]string{
		"DisplayName":     "Tool",
		"DisplayVersion":  "2.0",
		"InstallLocation": `C:\Prog`,
		"UninstallString": `C:\Prog\uninst.exe /S`,
		"URLInfoAbout":    "https://tool.example.com",
	}})

	rep := f.run(t, NewControlPanel(f.env))
	assert.Equal(t, 1, rep.Observed)

	r := f.record(t, "control-panel.Tool", "2")
	assert.Equal(t, `C:\Prog`, r.Directory)
	assert.Equal(t, NamespaceControlPanel+hklmUninstall+`\Tool`, r.DetectionInfo)

	script, err := afero.ReadFile(f.fs, filepath.Join(`C:\Prog`, ".Tally", UninstallScript))
	require.NoError(t, err)
	assert.Equal(t, "C:\\Prog\\uninst.exe /S\r\n", string(script))

	p, err := f.repo.FindPackage("control-panel.Tool")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Tool", p.Title)
	assert.Equal(t, "[Control Panel] Tool", p.Description)
	assert.Equal(t, "https://tool.example.com", p.URL)
}

func TestControlPanel_VersionSources(t *testing.T) {
	tests := []struct {
		name    string
		entry   uninstallEntry
		want    string
		skipped bool
	}{
		{
			name:  "display version",
			entry: uninstallEntry{strings: map[string]string{"DisplayVersion": "1.2.3", "VersionMajor": "9"}},
			want:  "1.2.3",
		},
		{
			name: "unparsable display version falls through",
			entry: uninstallEntry{
				strings: map[string]string{"DisplayVersion": "1.2 beta"},
				dwords:  map[string]uint32{"VersionMajor": 4, "VersionMinor": 1},
			},
			want: "4.1",
		},
		{
			name:  "numeric major only",
			entry: uninstallEntry{dwords: map[string]uint32{"VersionMajor": 7}},
			want:  "7",
		},
		{
			name:  "string major and minor",
			entry: uninstallEntry{strings: map[string]string{"VersionMajor": "5", "VersionMinor": "3"}},
			want:  "5.3",
		},
		{
			name:  "display name suffix",
			entry: uninstallEntry{strings: map[string]string{"DisplayName": "Foo Viewer 1.4.0"}},
			want:  "1.4",
		},
		{
			name:  "display name suffix after mixed whitespace",
			entry: uninstallEntry{strings: map[string]string{"DisplayName": "Foo\tViewer  2.5 "}},
			want:  "2.5",
		},
		{
			name:    "display name without dotted suffix",
			entry:   uninstallEntry{strings: map[string]string{"DisplayName": "Foo Viewer 2"}},
			skipped: true,
		},
		{
			name:    "single token display name",
			entry:   uninstallEntry{strings: map[string]string{"DisplayName": "1.0"}},
			skipped: true,
		},
		{
			name:    "no version at all",
			entry:   uninstallEntry{strings: map[string]string{"Publisher": "Example"}},
			skipped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUninstall("Entry", tt.entry)
			rep := f.run(t, NewControlPanel(f.env))
			if tt.skipped {
				assert.Zero(t, rep.Observed)
				assert.Zero(t, f.store.Len())
				return
			}
			assert.Equal(t, 1, rep.Observed)
			f.record(t, "control-panel.Entry", tt.want)
		})
	}
}

func TestControlPanel_PackageNames(t *testing.T) {
	assert.Equal(t, "control-panel.Mozilla_Firefox_115_0", controlPanelPackage("Mozilla Firefox 115.0"))
	assert.Equal(t, "control-panel.7-Zip", controlPanelPackage("7-Zip"))
}

func TestControlPanel_MSIPassThrough(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, "/apps/viewer")
	f.addUninstall(widgetGUID, uninstallEntry{strings: map[string]string{
		"DisplayName":     "Viewer",
		"DisplayVersion":  "1.0",
		"InstallLocation": "/apps/viewer",
		"UninstallString": "MsiExec.exe /X" + widgetGUID,
	}})

	rep := f.run(t, NewControlPanel(f.env))
	assert.Equal(t, 1, rep.Observed)

	recs := f.store.Records()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Installed())
	assert.Equal(t, NamespaceControlPanel+hklmUninstall+`\`+widgetGUID, recs[0].DetectionInfo)
}

func TestIsMSIPassThrough(t *testing.T) {
	assert.True(t, isMSIPassThrough("MsiExec.exe /X"+widgetGUID))
	assert.True(t, isMSIPassThrough("msiexec.exe /i"+widgetGUID))
	assert.False(t, isMSIPassThrough("MsiExec.exe /X"))
	assert.False(t, isMSIPassThrough("MsiExec.exe /X"+widgetGUID+" /quiet"))
	assert.False(t, isMSIPassThrough("MsiExec.exe /Xnot-a-guid"))
	assert.False(t, isMSIPassThrough(`C:\Prog\uninst.exe`))
}

func TestControlPanel_InstallLocationWithoutUninstallCommand(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, `C:\Prog`)
	f.addUninstall("Tool", uninstallEntry{strings: map[string]string{
		"DisplayVersion":  "2.0",
		"InstallLocation": `C:\Prog`,
	}})

	rep := f.run(t, NewControlPanel(f.env))
	assert.Equal(t, 1, rep.Observed)

	r := f.record(t, "control-panel.Tool", "2.0")
	assert.Equal(t, `C:\Prog`, r.Directory)
	assert.Equal(t, NamespaceControlPanel+hklmUninstall+`\Tool`, r.DetectionInfo)

	ok, err := afero.Exists(f.fs, filepath.Join(`C:\Prog`, ".Tally", UninstallScript))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestControlPanel_NothingToClaim(t *testing.T) {
	f := newFixture(t)
	f.addUninstall("Tool", uninstallEntry{strings: map[string]string{"DisplayVersion": "1.0"}})

	rep := f.run(t, NewControlPanel(f.env))
	assert.Equal(t, 1, rep.Observed)
	assert.False(t, f.record(t, "control-panel.Tool", "1.0").Installed())

	ok, err := afero.DirExists(f.fs, filepath.Join("/opt", "TallyDetected"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestControlPanel_DirectoryFromUninstallProgram(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, "/apps/tool")
	require.NoError(t, afero.WriteFile(f.fs, "/apps/tool/uninst", []byte{}, 0o755))
	f.addUninstall("Tool", uninstallEntry{strings: map[string]string{
		"DisplayVersion":       "1.5",
		"UninstallString":      "/apps/tool/uninst",
		"QuietUninstallString": "/apps/tool/uninst --quiet",
	}})

	f.run(t, NewControlPanel(f.env))
	assert.Equal(t, "/apps/tool", f.record(t, "control-panel.Tool", "1.5").Directory)

	script, err := afero.ReadFile(f.fs, "/apps/tool/.Tally/Uninstall.bat")
	require.NoError(t, err)
	assert.Equal(t, "/apps/tool/uninst --quiet\r\n", string(script))
}

func TestControlPanel_QuotesBarePathWithSpaces(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, "/apps/my tool")
	require.NoError(t, afero.WriteFile(f.fs, "/apps/my tool/uninst", []byte{}, 0o755))
	f.addUninstall("Tool", uninstallEntry{strings: map[string]string{
		"DisplayVersion":  "1.0",
		"UninstallString": "/apps/my tool/uninst",
	}})

	f.run(t, NewControlPanel(f.env))
	r := f.record(t, "control-panel.Tool", "1.0")
	assert.Equal(t, "/apps/my tool", r.Directory)

	script, err := afero.ReadFile(f.fs, "/apps/my tool/.Tally/Uninstall.bat")
	require.NoError(t, err)
	assert.Equal(t, "\"/apps/my tool/uninst\"\r\n", string(script))
}

func TestControlPanel_NestedDirectoryIsNotClaimed(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, "/apps/suite/plugin")
	f.store.SetDirectory(ident("com.example.suite", "1"), "/apps/suite")
	f.addUninstall("Plugin", uninstallEntry{strings: map[string]string{
		"DisplayVersion":  "1.0",
		"InstallLocation": "/apps/suite/plugin",
		"UninstallString": "/apps/suite/plugin/remove",
	}})

	f.run(t, NewControlPanel(f.env))
	assert.False(t, f.record(t, "control-panel.Plugin", "1.0").Installed())
}

func TestControlPanel_SameDirectoryClaimedOnce(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, "/apps/shared")
	for _, name := range []string{"A", "B"} {
		f.addUninstall(name, uninstallEntry{strings: map[string]string{
			"DisplayVersion":  "1.0",
			"InstallLocation": "/apps/shared",
			"UninstallString": "remove " + name,
		}})
	}

	f.run(t, NewControlPanel(f.env))
	assert.True(t, f.record(t, "control-panel.A", "1.0").Installed())
	assert.False(t, f.record(t, "control-panel.B", "1.0").Installed())
}

func TestControlPanel_ManagedDirectory(t *testing.T) {
	f := newFixture(t)
	f.addUninstall("Tool", uninstallEntry{
		hive: source.CurrentUser,
		strings: map[string]string{
			"DisplayName":     "Tool: Deluxe",
			"DisplayVersion":  "4.2",
			"UninstallString": "remove-tool.exe",
		},
	})

	f.run(t, NewControlPanel(f.env))
	r := f.record(t, "control-panel.Tool", "4.2")
	assert.Equal(t, filepath.Join("/opt", "TallyDetected", "Tool_ Deluxe"), r.Directory)
	assert.Equal(t, NamespaceControlPanel+`HKEY_CURRENT_USER\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Tool`, r.DetectionInfo)

	script, err := afero.ReadFile(f.fs, filepath.Join(r.Directory, ".Tally", UninstallScript))
	require.NoError(t, err)
	assert.Equal(t, "remove-tool.exe\r\n", string(script))
}

func TestControlPanel_Wow64OnlyOn64Bit(t *testing.T) {
	f := newFixture(t)
	f.plat.Bits64 = false
	f.addUninstall("Old", uninstallEntry{wow64: true, strings: map[string]string{"DisplayVersion": "1.0"}})

	rep := f.run(t, NewControlPanel(f.env))
	assert.Zero(t, rep.Observed)
}

func TestControlPanel_ClearsStaleRecords(t *testing.T) {
	f := newFixture(t)
	f.mkdir(t, "/apps/kept")
	kept := ident("control-panel.Kept", "1.0")
	f.store.SetDirectory(kept, "/apps/kept")
	f.store.SetDetectionInfo(kept, NamespaceControlPanel+hklmUninstall+`\Kept`)

	gone := ident("control-panel.Gone", "1.0")
	f.store.SetDirectory(gone, "/apps/gone")
	f.store.SetDetectionInfo(gone, NamespaceControlPanel+hklmUninstall+`\Gone`)

	msi := ident("msi.1D8E6291-B0D5-35EC-8441-6616F567A0F7", "1.0")
	f.store.SetDirectory(msi, "/apps/widget")
	f.store.SetDetectionInfo(msi, NamespaceMSI+widgetGUID)

	f.addUninstall("Kept", uninstallEntry{strings: map[string]string{"DisplayVersion": "1.0"}})

	rep := f.run(t, NewControlPanel(f.env))
	assert.Equal(t, 1, rep.Cleared)
	assert.True(t, f.record(t, kept.Package(), "1.0").Installed())
	assert.False(t, f.record(t, gone.Package(), "1.0").Installed())
	assert.True(t, f.record(t, msi.Package(), "1.0").Installed())
}

func TestControlPanel_NoLocationsKeepsRecords(t *testing.T) {
	f := newFixture(t)
	gone := ident("control-panel.Gone", "1.0")
	f.store.SetDirectory(gone, "/apps/gone")
	f.store.SetDetectionInfo(gone, NamespaceControlPanel+hklmUninstall+`\Gone`)

	rep := f.run(t, NewControlPanel(f.env))
	assert.Zero(t, rep.Cleared)
	assert.True(t, f.record(t, gone.Package(), "1.0").Installed())
}
