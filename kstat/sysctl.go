package kstat

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// SysctlRunner returns the `name=value` listing of every sysctl below oid.
type SysctlRunner func(ctx context.Context, oid string) ([]byte, error)

// SysctlSource walks the kstat.zfs sysctl tree as FreeBSD exports it. The tree
// interleaves objsets field by field and older kernels omit some fields, so its
// streams are tolerant.
type SysctlSource struct {
	run    SysctlRunner
	logger logr.Logger
}

func NewSysctlSource(run SysctlRunner, logger logr.Logger) *SysctlSource {
	if run == nil {
		run = execSysctl
	}
	return &SysctlSource{run: run, logger: logger.WithName("sysctl")}
}

func execSysctl(ctx context.Context, oid string) ([]byte, error) {
	return exec.CommandContext(ctx, "sysctl", "-e", oid).Output()
}

// sysctlPoolName escapes a pool name the way the kstat tree does.
func sysctlPoolName(pool string) string {
	return strings.ReplaceAll(pool, ".", "%25")
}

func (s *SysctlSource) Open(ctx context.Context, pool string) (Stream, error) {
	oid := "kstat.zfs"
	if pool != "" {
		oid = "kstat.zfs." + sysctlPoolName(pool) + ".dataset"
	}
	out, err := s.run(ctx, oid)
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return Stream{}, unavailable(err)
		case errors.As(err, &exitErr) && pool != "":
			return Stream{}, poolNotFound(pool)
		case errors.As(err, &exitErr):
			return Stream{}, unavailable(err)
		default:
			return Stream{}, errors.Wrapf(err, "sysctl %s", oid)
		}
	}

	return Stream{Fields: func(yield func(Field, error) bool) {
		scanner := bufio.NewScanner(bytes.NewReader(out))
		for scanner.Scan() {
			name, raw, ok := strings.Cut(scanner.Text(), "=")
			if !ok {
				continue
			}
			if !isDatasetOID(name) {
				continue
			}
			_, field := Field{Name: name}.Split()
			if !yield(Field{Name: name, Value: parseValue(field, raw)}, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Field{}, errors.Wrap(err, "reading sysctl output"))
		}
	}}, nil
}

// isDatasetOID keeps kstat.zfs.<pool>.dataset.* and drops the pool-wide kstats
// (txgs, misc, ...) that share the tree.
func isDatasetOID(name string) bool {
	parts := strings.SplitN(name, ".", 4)
	return len(parts) == 4 && parts[0] == "kstat" && parts[1] == "zfs" &&
		strings.HasPrefix(parts[3], "dataset.")
}
