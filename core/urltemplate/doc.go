// Package urltemplate resolves request target templates.
//
// A template is a plain string with placeholders in braces. Each placeholder
// is an expr-lang expression evaluated against a parameter map, so a template
// can reference nested values and apply simple formatting:
//
//	/rooms/{room.id}/items
//	/users/{userId}/orders?page={page ?? 1}
//
// Compiled programs are cached per placeholder, so resolving the same template
// repeatedly only pays for evaluation.
package urltemplate
