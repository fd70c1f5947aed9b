// Package commitgraph provides the validated in-memory model of one commit
// history snapshot.
//
// A [Snapshot] is plain data: an ordered list of [Commit] records plus a
// free-form [Annotation]. Declaration order is the only source of vertical
// ordering. [Build] assigns each commit a zero-based sequence index from
// that order and checks that every parent reference names a commit declared
// strictly earlier. Because references can only point backwards, a valid
// snapshot is acyclic by construction and no cycle search is needed.
//
// # Ancestry
//
// A commit has zero, one or two parents. [Commit.Ancestry] turns the two
// optional parent fields into an explicit [Ancestry] variant:
//
//   - [Root]: no parent, no incoming edge
//   - [Single]: one parent
//   - [Merge]: two distinct parents, first parent drawn first
//
// A second parent without a first parent is rejected, as is a merge that
// names the same parent twice.
//
// # Errors
//
// Unresolvable references fail with [*DanglingReferenceError], which carries
// the offending commit key and maps onto the DANGLING_REFERENCE code of
// package errors. Every other violation is an INVALID_SNAPSHOT error.
//
// # Usage
//
//	g, err := commitgraph.Build(snap)
//	if err != nil {
//	    var dangling *commitgraph.DanglingReferenceError
//	    if errors.As(err, &dangling) {
//	        log.Printf("commit %s: bad %s %q", dangling.Key, dangling.Field, dangling.Ref)
//	    }
//	    return err
//	}
//	for _, n := range g.Nodes() {
//	    fmt.Println(n.Seq, n.Key, g.Parents(n.Key))
//	}
package commitgraph
