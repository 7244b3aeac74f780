// Package extractors turns uploaded files into plain text. Each format
// lives in its own subpackage and is registered by extension.
package extractors
