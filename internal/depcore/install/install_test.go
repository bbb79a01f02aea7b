package install

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

type fakePM struct {
	addCalls []struct {
		root, arch         string
		pkglist            []string
		allowUntrusted     bool
		usermode, chroot   bool
	}
	fixCalls []string

	addExit, fixExit int
	fixStdout, fixStderr string
}

func (f *fakePM) Add(_ context.Context, root, arch string, pkglist []string, allowUntrusted, usermode, chroot bool) (string, string, int, error) {
	f.addCalls = append(f.addCalls, struct {
		root, arch       string
		pkglist          []string
		allowUntrusted   bool
		usermode, chroot bool
	}{root, arch, pkglist, allowUntrusted, usermode, chroot})
	return "", "", f.addExit, nil
}

func (f *fakePM) Fix(_ context.Context, root string) (string, string, int, error) {
	f.fixCalls = append(f.fixCalls, root)
	return f.fixStdout, f.fixStderr, f.fixExit, nil
}

type fakeSink struct{ logs []string }

func (s *fakeSink) Error(err error, hint string) {}
func (s *fakeSink) Log(line string)              { s.logs = append(s.logs, line) }

func TestInstallFromRepoNativeWritesWorldAndFixes(t *testing.T) {
	fs := afero.NewMemMapFs()
	pm := &fakePM{}
	inst := &Installer{PM: pm, Locks: depcore.NewArchLocks(t.TempDir()), FS: fs}

	err := inst.InstallFromRepo(context.Background(), "/build", "x86_64", []string{"B=1.0-r0"}, []string{"alpine-base"}, ModeNative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := afero.ReadFile(fs, "/build/etc/apk/world")
	if err != nil {
		t.Fatalf("reading world file: %v", err)
	}
	want := "alpine-base\nB=1.0-r0\n"
	if string(got) != want {
		t.Errorf("world file = %q, want %q", got, want)
	}
	if len(pm.fixCalls) != 1 || pm.fixCalls[0] != "/build" {
		t.Errorf("fixCalls = %v, want [/build]", pm.fixCalls)
	}
}

func TestInstallFromRepoNativeEmptyPkglistIsWorldBaseOnly(t *testing.T) {
	// Open question in the source spec: fix with an empty pkglist still
	// rewrites the world to worldBase only, erasing prior extras. Adopted
	// verbatim.
	fs := afero.NewMemMapFs()
	pm := &fakePM{}
	inst := &Installer{PM: pm, Locks: depcore.NewArchLocks(t.TempDir()), FS: fs}

	if err := inst.InstallFromRepo(context.Background(), "/build", "x86_64", nil, []string{"alpine-base"}, ModeNative); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := afero.ReadFile(fs, "/build/etc/apk/world")
	if err != nil {
		t.Fatalf("reading world file: %v", err)
	}
	if string(got) != "alpine-base\n" {
		t.Errorf("world file = %q, want %q", got, "alpine-base\n")
	}
}

func TestInstallFromRepoStage0(t *testing.T) {
	fs := afero.NewMemMapFs()
	pm := &fakePM{}
	inst := &Installer{PM: pm, Locks: depcore.NewArchLocks(t.TempDir()), FS: fs}

	if err := inst.InstallFromRepo(context.Background(), "/build", "", []string{"musl"}, nil, ModeStage0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pm.addCalls) != 1 {
		t.Fatalf("addCalls = %d, want 1", len(pm.addCalls))
	}
	call := pm.addCalls[0]
	if !call.usermode || call.chroot {
		t.Errorf("stage0 call = %+v, want usermode=true chroot=false", call)
	}
	if !call.allowUntrusted {
		t.Errorf("stage0 call with no signing key should allow untrusted")
	}
}

func TestInstallFromRepoCrossTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	pm := &fakePM{}
	inst := &Installer{PM: pm, Locks: depcore.NewArchLocks(t.TempDir()), FS: fs, KeyPath: "/keys/sign.rsa"}

	if err := inst.InstallFromRepo(context.Background(), "/sysroot", "aarch64", []string{"zlib"}, nil, ModeCrossTarget); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := pm.addCalls[0]
	if call.root != "/sysroot" || call.arch != "aarch64" || !call.chroot {
		t.Errorf("cross call = %+v, want root=/sysroot arch=aarch64 chroot=true", call)
	}
	if call.allowUntrusted {
		t.Errorf("cross call with signing key configured should not allow untrusted")
	}
}

func TestInstallFromRepoNonZeroExitFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	pm := &fakePM{fixExit: 1, fixStderr: "boom"}
	sink := &fakeSink{}
	inst := &Installer{PM: pm, Locks: depcore.NewArchLocks(t.TempDir()), FS: fs, Sink: sink}

	err := inst.InstallFromRepo(context.Background(), "/build", "x86_64", []string{"B=1.0-r0"}, nil, ModeNative)
	if err == nil {
		t.Fatal("want error on non-zero exit, got none")
	}
	if len(sink.logs) == 0 || sink.logs[0] != "boom" {
		t.Errorf("sink.logs = %v, want stderr dumped first", sink.logs)
	}
}

func TestMergeSorted(t *testing.T) {
	got := MergeSorted([]string{"C=1.0", "A=1.0"}, []string{"A=1.0", "B=1.0"})
	want := []string{"A=1.0", "B=1.0", "C=1.0"}
	if len(got) != len(want) {
		t.Fatalf("MergeSorted = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MergeSorted[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
