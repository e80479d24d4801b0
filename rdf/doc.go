// Package rdf provides a compact RDF model and the JSON-LD plumbing needed to
// frame a document: conversion to and from RDF, single-graph merging and
// framing, all backed by github.com/piprate/json-gold.
//
// Example (merge all graphs, then frame):
//
//	proc := rdf.NewJSONLDProcessor()
//	quads, err := proc.ToRDF(ctx, doc, rdf.JSONLDOptions{})
//	if err != nil {
//	    // handle error
//	}
//	merged := rdf.MergeQuads(quads)
//	expanded, err := proc.FromRDF(ctx, merged.Quads(), rdf.JSONLDOptions{})
//	if err != nil {
//	    // handle error
//	}
//	framed, err := proc.Frame(ctx, expanded, frame, rdf.FrameOptions{
//	    JSONLDOptions: rdf.JSONLDOptions{ProcessingMode: rdf.ProcessingModeJSONLD11},
//	    OmitDefault:   true,
//	})
//
// Errors carry an ErrorCode, available through Code. JSON syntax errors are
// reported as *ParseError with a line, column and caret excerpt.
package rdf
