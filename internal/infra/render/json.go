package render

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// jsonStyle is registered once for highlighted JSON output.
const jsonStyle = "tpaws"

func init() {
	styles.Register(chroma.MustNewStyle(jsonStyle, chroma.StyleEntries{
		chroma.Text:            "#cdd6f4",
		chroma.Punctuation:     "#9399b2",
		chroma.NameTag:         "#A29BFE",
		chroma.KeywordConstant: "#fab387",
		chroma.LiteralString:   "#a6e3a1",
		chroma.LiteralNumber:   "#fab387",
		chroma.Error:           "#f38ba8",
	}))
}

// JSON writes v as indented JSON. Output is colored when w is a terminal.
func JSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	if !isTerminal(w) {
		_, err := w.Write(buf.Bytes())
		return err
	}
	return HighlightJSON(w, buf.String())
}

// HighlightJSON writes src with terminal colors. Falls back to plain
// output when tokenizing fails.
func HighlightJSON(w io.Writer, src string) error {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, src)
	if err != nil {
		_, werr := io.WriteString(w, src)
		return werr
	}
	return formatters.TTY256.Format(w, styles.Get(jsonStyle), it)
}

// Underline returns a rule as wide as s in terminal cells.
func Underline(s string) string {
	width := runewidth.StringWidth(s)
	out := make([]rune, width)
	for i := range out {
		out[i] = '─'
	}
	return string(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
