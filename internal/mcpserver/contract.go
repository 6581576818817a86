package mcpserver

// CanvasFormatContract describes how timestamps are stored in .canvas files
// so LLM consumers can read them without calling the tools.
const CanvasFormatContract = `# Timestamped Canvas Format

Canvas files are JSON Canvas documents with top-level "nodes" and "edges"
arrays. Unknown keys of a node or edge are kept as extension data.

## Timestamp key

Every node and edge created through the host carries a "timestamp" string
recorded at creation time:

` + "```" + `json
{"id": "1a2b", "type": "text", "text": "idea", "x": 0, "y": 0,
 "width": 250, "height": 60, "timestamp": "2024-03-01 10:05"}
` + "```" + `

Rules:
- The value is already formatted with the configured date format
  (default YYYY-MM-DD HH:mm). It is never reparsed.
- An empty string means the timestamp was cleared.
- A missing key means the item predates the plugin; it shows a blank stamp.
- Opening a canvas never restamps existing items.

## Date format tokens

Year YYYY YY, quarter Q, month MMMM MMM MM Mo M, day of year DDDD DDDo
DDD, day of month DD Do D, weekday dddd ddd dd do d, ISO week WW Wo W GGGG
GG, hours HH H hh h kk k, minutes mm m, seconds ss s, fractions SSS SS S,
meridiem A a, zone ZZ Z, epoch X x. Text inside [brackets] is literal.
`
