package session

import (
	"bufio"
	"io"
	"os"
	"strings"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
	"github.com/Aman-CERP/indexbench/internal/store"
)

var (
	titleOptions      = store.FieldOptions{Store: true, Index: true}
	storedBodyOptions = store.FieldOptions{Store: true, Index: true, TermVectors: true}
	indexedBody       = store.FieldOptions{Index: true}
)

// readDocument builds the document for one corpus file.
// The first line is the title. With storeBody, the remaining lines are joined
// without separators after their terminators are stripped; otherwise the rest
// of the file is indexed as-is and not stored.
func readDocument(path, id string, storeBody bool) (*store.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, benchErrors.DocumentRead(path, "cannot open document", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	title, err := readLine(r)
	if err == io.EOF {
		return nil, benchErrors.DocumentRead(path, "document has no title line", nil)
	}
	if err != nil {
		return nil, benchErrors.DocumentRead(path, "cannot read title", err)
	}

	doc := store.NewDocument(id)
	doc.AddField(TitleField, title, titleOptions)

	if !storeBody {
		// Engines take field content as bytes, so the body is read whole.
		rest, err := io.ReadAll(r)
		if err != nil {
			return nil, benchErrors.DocumentRead(path, "cannot read body", err)
		}
		doc.AddField(BodyField, string(rest), indexedBody)
		return doc, nil
	}

	var body strings.Builder
	for {
		line, err := readLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, benchErrors.DocumentRead(path, "cannot read body", err)
		}
		body.WriteString(line)
	}
	doc.AddField(BodyField, body.String(), storedBodyOptions)
	return doc, nil
}

// readLine returns the next line without its terminator. io.EOF is returned
// only when no data remains; a final line without a newline is returned as-is.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.EOF
		}
		err = nil
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
