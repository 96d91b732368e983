package program

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"

	"github.com/geckorv/hdlbuild/internal/errors"
)

const wordSize = 4

// ConvertHex writes the bytes of reader as a `$readmemh` image, one 32-bit little-endian word per line
// with the most significant byte first. A trailing partial word is written as is. It returns the
// number of bytes read.
func ConvertHex(reader io.Reader, writer io.Writer) (int64, error) {
	var (
		in    = bufio.NewReader(reader)
		out   = bufio.NewWriter(writer)
		word  = make([]byte, 0, wordSize)
		total int64
		line  = make([]byte, 0, wordSize*2+1)
	)

	flush := func() error {
		line = line[:0]

		for i := len(word) - 1; i >= 0; i-- {
			line = hex.AppendEncode(line, word[i:i+1])
		}

		line = append(line, '\n')
		word = word[:0]

		_, err := out.Write(line)

		return err
	}

	for {
		b, err := in.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return total, errors.New(err)
		}

		total++

		word = append(word, b)
		if len(word) == wordSize {
			if err := flush(); err != nil {
				return total, errors.New(err)
			}
		}
	}

	if len(word) > 0 {
		if err := flush(); err != nil {
			return total, errors.New(err)
		}
	}

	return total, errors.New(out.Flush())
}

// ConvertHexFile converts the binary file src into the memory image dst.
func ConvertHexFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.New(err)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return 0, errors.New(err)
	}

	size, err := ConvertHex(in, out)
	if err != nil {
		out.Close() //nolint:errcheck
		return size, err
	}

	return size, errors.New(out.Close())
}
