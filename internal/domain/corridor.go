package domain

import (
	"errors"
	"fmt"
	"strings"
)

// SegmentArrow joins the two nodes of a segment name.
const SegmentArrow = "→"

var (
	// ErrUnknownNode is returned when an O-D endpoint is not a corridor node.
	ErrUnknownNode = errors.New("unknown corridor node")
	// ErrNoPathSegments is returned when no observed segment lies between the endpoints.
	ErrNoPathSegments = errors.New("no matching segments for origin and destination")
)

// DefaultNodeOrder lists the corridor nodes from the south end to the north end.
var DefaultNodeOrder = []string{
	"Avenue 52",
	"Calle Tampico",
	"Village Shopping Ctr",
	"Avenue 50",
	"Sagebrush Ave",
	"Eisenhower Dr",
	"Avenue 48",
	"Avenue 47",
	"Point Happy Simon",
	"Hwy 111",
}

// SplitSegment returns the two endpoints of a segment name.
func SplitSegment(name string) (from, to string, ok bool) {
	parts := strings.Split(name, SegmentArrow)
	if len(parts) != 2 {
		return "", "", false
	}
	from, to = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}

// SegmentName joins two nodes into the canonical segment label.
func SegmentName(from, to string) string {
	return from + " " + SegmentArrow + " " + to
}

// normalizeSegmentName rewrites ASCII arrows and trims the endpoints.
func normalizeSegmentName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "->", SegmentArrow))
	if from, to, ok := SplitSegment(name); ok {
		return SegmentName(from, to)
	}
	return name
}

// NodesPresent collects every node named by a well-formed segment.
func NodesPresent(segments []string) map[string]struct{} {
	present := make(map[string]struct{})
	for _, seg := range segments {
		if from, to, ok := SplitSegment(seg); ok {
			present[from] = struct{}{}
			present[to] = struct{}{}
		}
	}
	return present
}

// CanonicalOrder keeps the nodes of desired that appear in the observed segments.
func CanonicalOrder(desired, segments []string) []string {
	present := NodesPresent(segments)
	canonical := make([]string, 0, len(desired))
	for _, node := range desired {
		if _, ok := present[node]; ok {
			canonical = append(canonical, node)
		}
	}
	return canonical
}

// CorridorNodes returns the ordered node list for the observed segments.
// When fewer than two configured nodes are present the order is discovered
// by chaining segments.
func CorridorNodes(desired, segments []string) []string {
	if canonical := CanonicalOrder(desired, segments); len(canonical) >= 2 {
		return canonical
	}
	return DiscoverNodeOrder(segments)
}

// DiscoverNodeOrder chains segments in observation order. A segment extends
// the chain when it starts at the current tail; a segment touching no known
// node starts a new run. Anything else is ignored.
func DiscoverNodeOrder(segments []string) []string {
	var order []string
	known := make(map[string]bool)
	for _, seg := range segments {
		from, to, ok := SplitSegment(seg)
		if !ok {
			continue
		}
		switch {
		case len(order) == 0:
			order = append(order, from, to)
		case order[len(order)-1] == from:
			order = append(order, to)
		case !known[from] && !known[to]:
			order = append(order, from, to)
		default:
			continue
		}
		known[from], known[to] = true, true
	}

	out := make([]string, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, n := range order {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// ODPath is the resolved route between an origin and a destination node.
type ODPath struct {
	Origin      string
	Destination string
	Direction   Direction
	Segments    []string
}

// Label renders the route for display, e.g. "Avenue 52 → Avenue 50".
func (p ODPath) Label() string {
	return SegmentName(p.Origin, p.Destination)
}

// ResolveODPath finds the observed segments between origin and destination.
// Segments are named in northbound orientation; the travel direction comes
// from the relative position of the endpoints in nodes.
func ResolveODPath(nodes []string, origin, destination string, observed []string) (ODPath, error) {
	oi, di := indexOf(nodes, origin), indexOf(nodes, destination)
	if oi < 0 {
		return ODPath{}, fmt.Errorf("%w: %q", ErrUnknownNode, origin)
	}
	if di < 0 {
		return ODPath{}, fmt.Errorf("%w: %q", ErrUnknownNode, destination)
	}

	path := ODPath{Origin: origin, Destination: destination}
	switch {
	case oi < di:
		path.Direction = DirectionNorth
	case oi > di:
		path.Direction = DirectionSouth
	default:
		return path, ErrNoPathSegments
	}

	lo, hi := min(oi, di), max(oi, di)
	have := make(map[string]struct{}, len(observed))
	for _, s := range observed {
		have[s] = struct{}{}
	}
	for i := lo; i < hi; i++ {
		seg := SegmentName(nodes[i], nodes[i+1])
		if _, ok := have[seg]; ok {
			path.Segments = append(path.Segments, seg)
		}
	}
	if len(path.Segments) == 0 {
		return path, ErrNoPathSegments
	}
	return path, nil
}

func indexOf(nodes []string, name string) int {
	for i, n := range nodes {
		if n == name {
			return i
		}
	}
	return -1
}
