package identity

import (
	"fmt"
	"strconv"
	"strings"

	"filtertree/internal/services"
	"filtertree/internal/textutil"
	"filtertree/internal/tree"
)

// Stage names the assigner in errors.
const Stage = "identity"

const (
	DefaultSeparator     = "_"
	DefaultSegmentMaxLen = 40
	DefaultMaxSuffix     = 1000
)

// Options tune Assign. Zero values select the defaults above; a negative
// SegmentMaxLen disables the segment cap.
type Options struct {
	Separator     string
	SegmentMaxLen int
	MaxSuffix     int
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.SegmentMaxLen == 0 {
		o.SegmentMaxLen = DefaultSegmentMaxLen
	}
	if o.MaxSuffix <= 1 {
		o.MaxSuffix = DefaultMaxSuffix
	}
	return o
}

// Record is one exported node.
type Record struct {
	ID       string      `json:"identifier"`
	Name     string      `json:"name"`
	Level    int         `json:"level"`
	ParentID *string     `json:"parent_identifier"`
	Origin   tree.Origin `json:"origin,omitempty"`
}

// Candidate returns the unsuffixed identifier for n.
func Candidate(n *tree.Node, opts Options) string {
	opts = opts.withDefaults()
	names := n.PathNames()
	segments := make([]string, len(names))
	for i, name := range names {
		segments[i] = textutil.SanitizeSegment(name, opts.SegmentMaxLen)
	}
	return strings.Join(segments, opts.Separator)
}

// Assign sets ID on every node that lacks one and returns the export records
// in pre-order. IDs already present are kept and reserved first, so a new
// node never takes an identifier that was handed out in an earlier pass.
// Later duplicates of a candidate get "<sep>2", "<sep>3", ... in pre-order.
func Assign(f *tree.Forest, opts Options) ([]Record, error) {
	opts = opts.withDefaults()
	nodes := f.Nodes()

	used := make(map[string]*tree.Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		if prev, ok := used[n.ID]; ok {
			return nil, services.Wrap(services.ErrIdentifierCollision, Stage, "reserve",
				fmt.Sprintf("%q already used by %q", n.ID, prev.Path()), nil)
		}
		used[n.ID] = n
	}

	for _, n := range nodes {
		if n.ID != "" {
			continue
		}
		id, err := unique(Candidate(n, opts), used, opts)
		if err != nil {
			return nil, err
		}
		n.ID = id
		used[id] = n
	}

	records := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		rec := Record{ID: n.ID, Name: n.Name, Level: n.Level, Origin: n.Origin}
		if n.Parent != nil {
			parentID := n.Parent.ID
			rec.ParentID = &parentID
		}
		records = append(records, rec)
	}
	return records, nil
}

func unique(candidate string, used map[string]*tree.Node, opts Options) (string, error) {
	if _, taken := used[candidate]; !taken {
		return candidate, nil
	}
	for i := 2; i <= opts.MaxSuffix; i++ {
		id := candidate + opts.Separator + strconv.Itoa(i)
		if _, taken := used[id]; !taken {
			return id, nil
		}
	}
	return "", services.Wrap(services.ErrIdentifierCollision, Stage, "suffix",
		fmt.Sprintf("%q still taken after %d suffixes", candidate, opts.MaxSuffix), nil)
}
