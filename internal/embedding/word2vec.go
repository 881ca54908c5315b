package embedding

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadText parses the word2vec text format: an optional "<count> <dim>"
// header followed by one "word v1 v2 ... vN" line per word.
func ReadText(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		words   []string
		vectors [][]float32
		dim     = -1
		line    int
	)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				d, err := strconv.Atoi(fields[1])
				if err != nil {
					return nil, fmt.Errorf("line 1: invalid dimension %q", fields[1])
				}
				dim = d
				continue
			}
		}
		if dim >= 0 && len(fields)-1 != dim {
			return nil, fmt.Errorf("line %d: word %q has %d components, expected %d", line, fields[0], len(fields)-1, dim)
		}
		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid component %q: %w", line, f, err)
			}
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("line %d: non-finite component %q", line, f)
			}
			vec[i] = float32(x)
		}
		words = append(words, fields[0])
		vectors = append(vectors, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("no word vectors found")
	}
	return NewTable(words, vectors)
}

// ReadBinary parses the word2vec binary format: a "<count> <dim>\n" header,
// then per word the word bytes, a space and dim little-endian float32 values.
func ReadBinary(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("malformed header %q", strings.TrimSpace(header))
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("invalid word count %q", fields[0])
	}
	dim, err := strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %q", fields[1])
	}

	words := make([]string, 0, count)
	vectors := make([][]float32, 0, count)
	buf := make([]byte, 4*dim)
	for i := 0; i < count; i++ {
		word, err := br.ReadString(' ')
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		word = strings.TrimLeft(strings.TrimSuffix(word, " "), "\n")
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("vector for %q: %w", word, err)
		}
		vec := make([]float32, dim)
		for d := range vec {
			vec[d] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*d:]))
		}
		words = append(words, word)
		vectors = append(vectors, vec)
	}
	return NewTable(words, vectors)
}

// WriteText writes t in the word2vec text format, header included.
func WriteText(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", t.Len(), t.Dim()); err != nil {
		return err
	}
	for i, word := range t.words {
		bw.WriteString(word)
		for _, x := range t.vectors[i] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteBinary writes t in the word2vec binary format.
func WriteBinary(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", t.Len(), t.Dim()); err != nil {
		return err
	}
	buf := make([]byte, 4)
	for i, word := range t.words {
		bw.WriteString(word)
		bw.WriteByte(' ')
		for _, x := range t.vectors[i] {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
