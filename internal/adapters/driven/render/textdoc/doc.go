// Package textdoc is a render engine for plain text and HTML documents.
//
// Plain text is split into pages on form feeds. HTML is reduced to text
// with golang.org/x/net/html and split on <hr> elements and elements with
// class "page". Pages are painted word-wrapped to their layout width.
//
// Input that contains NUL bytes or is not valid UTF-8 is rejected with
// domain.ErrInvalidContent; a document caught halfway through a rewrite
// usually fails this way.
package textdoc
