package kstat

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// DefaultProcfsRoot is where the SPL exports ZFS kstats on Linux.
const DefaultProcfsRoot = "/proc/spl/kstat/zfs"

// objsetHeaderLines precede the rows of every objset-* file: a raw kstat header
// followed by the "name type data" column titles.
const objsetHeaderLines = 2

// kstatDataString is the KSTAT_DATA_STRING type code in the "type" column.
const kstatDataString = "7"

// ProcfsSource reads objset-* files below a procfs kstat root. Every file is a
// complete record, so its streams are strict.
type ProcfsSource struct {
	root   string
	logger logr.Logger
}

func NewProcfsSource(root string, logger logr.Logger) *ProcfsSource {
	if root == "" {
		root = DefaultProcfsRoot
	}
	return &ProcfsSource{root: root, logger: logger.WithName("procfs")}
}

func (s *ProcfsSource) Open(ctx context.Context, pool string) (Stream, error) {
	if _, err := os.Stat(s.root); err != nil {
		return Stream{}, unavailable(err)
	}
	var pools []string
	if pool != "" {
		fi, err := os.Stat(filepath.Join(s.root, pool))
		if err != nil || !fi.IsDir() {
			return Stream{}, poolNotFound(pool)
		}
		pools = []string{pool}
	} else {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			return Stream{}, unavailable(err)
		}
		for _, e := range entries {
			if e.IsDir() {
				pools = append(pools, e.Name())
			}
		}
	}

	var paths []string
	for _, p := range pools {
		entries, err := os.ReadDir(filepath.Join(s.root, p))
		if err != nil {
			return Stream{}, errors.Wrapf(err, "listing objsets of pool %q", p)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "objset-") {
				paths = append(paths, filepath.Join(s.root, p, e.Name()))
			}
		}
	}
	// A named pool must export at least one objset.
	if pool != "" && len(paths) == 0 {
		return Stream{}, poolNotFound(pool)
	}

	return Stream{Strict: true, Fields: func(yield func(Field, error) bool) {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				yield(Field{}, err)
				return
			}
			if !s.readObjset(path, yield) {
				return
			}
		}
	}}, nil
}

// readObjset yields the rows of one objset file. It reports whether the consumer
// wants more.
func (s *ProcfsSource) readObjset(path string, yield func(Field, error) bool) bool {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		// The dataset was unmounted between listing and reading.
		s.logger.V(1).Info("objset vanished", "path", path)
		return true
	}
	if err != nil {
		return yield(Field{}, errors.Wrapf(err, "opening %s", path))
	}
	defer f.Close()

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = path
	}
	key := filepath.ToSlash(rel)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line <= objsetHeaderLines {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			s.logger.V(1).Info("skipping malformed objset row", "path", path, "line", line)
			continue
		}
		name, typ, raw := fields[0], fields[1], fields[2]
		v := parseValue(name, raw)
		if typ == kstatDataString {
			v = String(raw)
		}
		if !yield(Field{Name: key + "." + name, Value: v}, nil) {
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		return yield(Field{}, errors.Wrapf(err, "reading %s", path))
	}
	return true
}
