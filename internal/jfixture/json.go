package jfixture

import (
	"bytes"
	"strconv"

	"github.com/buger/jsonparser"
)

// ParseNode reads a fixture Node from JSON, in the shape Encode produces:
// {"kind":"scope","name":"r","children":[...]}. Derived from
// document/json.go's parseJSONValue, which dispatches on jsonparser.Get's
// reported value type rather than unmarshalling into a struct.
func ParseNode(data []byte) (Node, error) {
	var n Node
	var err error

	n.Kind, err = jsonparser.GetString(data, "kind")
	if err != nil {
		return Node{}, err
	}
	n.Name, _ = jsonparser.GetString(data, "name")
	n.Type, _ = jsonparser.GetString(data, "type")
	n.ElementType, _ = jsonparser.GetString(data, "elementType")
	n.TypeID, _ = jsonparser.GetString(data, "typeID")

	if size, gerr := jsonparser.GetInt(data, "size"); gerr == nil {
		n.Size = uint32(size)
	}
	if width, gerr := jsonparser.GetInt(data, "width"); gerr == nil {
		n.Width = uint8(width)
	}
	if height, gerr := jsonparser.GetInt(data, "height"); gerr == nil {
		n.Height = uint8(height)
	}

	childrenData, dt, _, gerr := jsonparser.Get(data, "children")
	if gerr == nil && dt == jsonparser.Array {
		var childErr error
		_, aerr := jsonparser.ArrayEach(childrenData, func(value []byte, dataType jsonparser.ValueType, offset int, ierr error) {
			if childErr != nil {
				return
			}
			child, perr := ParseNode(value)
			if perr != nil {
				childErr = perr
				return
			}
			n.Children = append(n.Children, child)
		})
		if childErr != nil {
			return Node{}, childErr
		}
		if aerr != nil {
			return Node{}, aerr
		}
	}

	return n, nil
}

// Encode renders n as JSON, hand-rolled with bytes.Buffer rather than
// encoding/json. Derived from document/array.go's jsonArray and
// jsonEncodedDocument MarshalJSON methods, which build JSON output by
// writing delimiters and recursing, not by reflecting over a struct.
func Encode(n Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n Node) {
	buf.WriteByte('{')
	writeStringField(buf, "kind", n.Kind, true)
	writeStringField(buf, "name", n.Name, false)
	if n.Kind == "value" {
		writeStringField(buf, "type", n.Type, false)
		if n.ElementType != "" {
			writeStringField(buf, "elementType", n.ElementType, false)
		}
		if n.TypeID != "" {
			writeStringField(buf, "typeID", n.TypeID, false)
		}
		writeUintField(buf, "size", uint64(n.Size))
		writeUintField(buf, "width", uint64(n.Width))
		writeUintField(buf, "height", uint64(n.Height))
	} else {
		if n.TypeID != "" {
			writeStringField(buf, "typeID", n.TypeID, false)
		}
		buf.WriteString(`,"children":[`)
		for i, c := range n.Children {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeNode(buf, c)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
}

func writeStringField(buf *bytes.Buffer, key, value string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":"`)
	writeEscaped(buf, value)
	buf.WriteByte('"')
}

func writeUintField(buf *bytes.Buffer, key string, value uint64) {
	buf.WriteByte(',')
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.WriteString(strconv.FormatUint(value, 10))
}

func writeEscaped(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xF])
				continue
			}
			buf.WriteRune(r)
		}
	}
}
