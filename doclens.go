// Package doclens answers natural-language questions about documentation
// sites. It crawls a site, chunks and embeds the extracted text, stores it
// per domain, ranks chunks with a hybrid semantic and lexical search, and
// generates answers grounded strictly in the retrieved text.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, gemini/, fiber/).
package doclens
