// Package query implements the query component of URIs as an ordered,
// multi-valued and typed parameter model.
//
// # Values
//
// A parameter value is a [Value]: a text, a number or a sequence of texts and numbers.
// [Parse] decodes every value and coerces integer literals into numbers:
//
//	q, _ := query.Parse("search=helloworld&class=commom&class=typescript&class=111")
//	// search: "helloworld"
//	// class:  ["commom" "typescript" 111]
//
// Sequences appear only when a name repeats in the parsed text or when a caller
// assigns one with [Seq]. [Values.Set] never turns a scalar into a sequence.
//
// # Rendering
//
// [Values.Render] writes "?" followed by the pairs in the order names were first added,
// repeating the name for every element of a sequence. Every byte outside
// the unreserved set is percent-encoded, so rendering is the exact inverse of parsing:
//
//	q.Set("v", query.Text("test"))
//	q.Set("a", query.Seq(query.Number(1), query.Number(2)))
//	q.Render(nil) // "?search=helloworld&class=commom&class=typescript&class=111&v=test&a=1&a=2"
//
// Integer literals that do not fit into int64 stay texts and are rendered unchanged.
package query
