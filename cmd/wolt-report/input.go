package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"wolt-report-service/internal/orders"
)

var gzipMagic = []byte{0x1f, 0x8b}

// readInputs loads every path ("-" is stdin) and splits each payload into
// order documents. Gzip input is detected by its magic bytes.
func readInputs(paths []string, stdin io.Reader) ([][]byte, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one --input is required")
	}

	var docs [][]byte
	for _, path := range paths {
		body, err := readInput(path, stdin)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		split, err := orders.SplitPayload(body)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		docs = append(docs, split...)
	}
	return docs, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var src io.Reader
	if strings.TrimSpace(path) == "-" {
		src = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}

	br := bufio.NewReader(src)
	head, _ := br.Peek(len(gzipMagic))
	if !bytes.Equal(head, gzipMagic) {
		return io.ReadAll(br)
	}
	gz, err := pgzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
