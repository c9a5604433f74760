// Package io reads and writes drawio documents.
//
// # Format
//
// A drawio file is an mxfile element holding one diagram element per page.
// A page's content is either an inline mxGraphModel element or a base64
// string of raw-DEFLATE compressed XML:
//
//	<mxfile host="drawkit" version="21.6.5">
//	  <diagram id="p1" name="Page-1">
//	    <mxGraphModel grid="1" gridSize="10">
//	      <root>
//	        <mxCell id="0"/>
//	        <mxCell id="1" parent="0"/>
//	        <mxCell id="2" value="API" style="rounded=1;" vertex="1" parent="1">
//	          <mxGeometry x="40" y="40" width="120" height="60" as="geometry"/>
//	        </mxCell>
//	      </root>
//	    </mxGraphModel>
//	  </diagram>
//	</mxfile>
//
// # Import
//
// Use [ImportDrawio] to read a file, [ReadDrawio] to read from any
// io.Reader, or [UnmarshalDrawio] for a byte slice:
//
//	doc, err := io.ImportDrawio("architecture.drawio", io.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Page content is detected without a flag: it is parsed as XML first and
// decompressed only when that fails. Every page is validated after decoding
// and the first violation fails the whole read; no partial document is
// returned. Elements drawkit does not recognize are kept as opaque cells and
// written back unchanged.
//
// # Export
//
// Use [ExportDrawio], [WriteDrawio] or [MarshalDrawio]. The document is
// validated first and rendered into memory, so a failed write produces no
// output. [Options.Compression] chooses whether pages keep their original
// storage form or are all compressed or all inlined.
//
// Cells are written root first and then in insertion order, which drawio
// uses as z-order. Attribute order captured on read is reproduced, so an
// unmodified inline page usually comes back byte for byte. Compressed
// payloads are re-encoded and only their decoded content is stable.
//
// # Concurrency
//
// Reading and writing are pure in-memory transformations. Distinct
// documents may be processed concurrently; a single document must not be
// modified while it is being written.
package io
