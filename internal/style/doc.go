// Package style rewrites the Default style of Advanced SubStation Alpha
// documents.
//
// The patcher is line-oriented: it tracks whether it is inside the
// [V4+ Styles] section, replaces the first "Style: Default,..." line it
// finds there with one synthesized from a Config, and inserts a new line
// after the section's Format line when no Default style exists. Every other
// line, including the whole [Events] block, is passed through untouched.
//
// Style values are never validated. Whatever text a Config holds ends up in
// the style line verbatim.
package style
