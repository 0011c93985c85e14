// Package io reads and writes dialogue snapshots as JSON files.
//
// # Overview
//
// The file format is the same document every store persists: an object
// keyed by character ID.
//
//	{
//	  "char_…": {
//	    "id": "char_…", "name": "Bo", "icon": "👤", "color": "#336699",
//	    "x": 100, "y": 100,
//	    "dialogue": {
//	      "nodes": {"node_…": {"id": "node_…", "text": "Hello", "fullText": "Hello world", …}},
//	      "connections": [{"id": "conn_…", "from": "node_…", "to": "node_…", "text": "Option"}],
//	      "interruptions": [{"from": {"fromNode": "…", "toNode": "…"}, "to": "node_…", "connection": "conn_…"}]
//	    }
//	  }
//	}
//
// Files exported here can be imported into any backend, and a snapshot
// copied out of a backend can be imported here.
//
// # Import
//
// Use [ImportJSON] to read a file, or [ReadJSON] to read from any
// io.Reader. Decoding normalizes older snapshots (missing connection IDs,
// missing collections). [Check] lists references that do not resolve;
// those are kept, not rejected, since the editor treats them as inert.
//
// # Export
//
// Use [ExportJSON] to write a file, or [WriteJSON] to write to any
// io.Writer. Output is indented and ends with a newline.
package io
