// Package normalisers provides the format classifier and the registry
// of Normaliser implementations, one per format kind. Each normaliser
// knows how to extract clean text from a specific content category;
// chunking happens afterwards in the postprocessor pipeline.
package normalisers
