package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/varint/internal/config"
	"github.com/vango-dev/varint/internal/errors"
	"github.com/vango-dev/varint/pkg/s3stream"
	"github.com/vango-dev/varint/pkg/varint"
)

func decodeCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var (
		typ    string
		hexArg string
		file   string
		s3URI  string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a varint stream",
		Long: `Decode consecutive values of the given type and print one decimal
value per line until the input ends.

The input is read from --hex, --file, --s3 or stdin, in that order of
preference; at most one may be given. Decoding stops at the first
malformed value and reports its byte offset.

Examples:
  varint decode --type u16 --hex ac02
  varint decode --type i64 --file values.bin
  varint decode --type u32 --s3 s3://bucket/values.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindFlag(typ)
			if err != nil {
				return err
			}

			var in io.Reader
			switch {
			case hexArg != "":
				data, err := parseHex(hexArg)
				if err != nil {
					return err
				}
				in = bytes.NewReader(data)
			case file != "":
				f, err := os.Open(file)
				if err != nil {
					return errors.New(errors.CodeIO).Wrap(err)
				}
				defer f.Close()
				in = f
			case s3URI != "":
				cfg, err := loadCfg()
				if err != nil {
					return err
				}
				bucket, key, err := s3stream.ParseURI(s3URI)
				if err != nil {
					return errors.New(errors.CodeBadS3URI).Wrap(err)
				}
				obj, err := s3stream.Open(cmd.Context(), newS3Client(cfg), bucket, key)
				if err != nil {
					return errors.New(errors.CodeS3).Wrap(err)
				}
				defer obj.Close()
				in = obj
			default:
				in = cmd.InOrStdin()
			}

			return decodeStream(kind, in, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "u64", "Integer type (u8..u64, i8..i64)")
	cmd.Flags().StringVar(&hexArg, "hex", "", "Hex encoded input (whitespace ignored)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read input from a file")
	cmd.Flags().StringVar(&s3URI, "s3", "", "Read input from s3://bucket/key")
	cmd.MarkFlagsMutuallyExclusive("hex", "file", "s3")

	return cmd
}

func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidHex).Wrap(err)
	}
	return data, nil
}

// offsetReader tracks how many bytes the decoder consumed.
type offsetReader struct {
	r *bufio.Reader
	n int
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.r.Read(p)
	o.n += n
	return n, err
}

func (o *offsetReader) ReadByte() (byte, error) {
	b, err := o.r.ReadByte()
	if err == nil {
		o.n++
	}
	return b, err
}

// decodeStream prints values from in until it is exhausted.
func decodeStream(kind varint.Kind, in io.Reader, out io.Writer) error {
	r := &offsetReader{r: bufio.NewReader(in)}
	w := bufio.NewWriter(out)
	defer w.Flush()

	for {
		start := r.n
		text, err := kind.ReadText(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			w.Flush()
			return errors.FromDecode(err, kind).WithOffset(start)
		}
		fmt.Fprintln(w, text)
	}
}
