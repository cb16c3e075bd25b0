package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/varint/internal/config"
	"github.com/vango-dev/varint/internal/errors"
	"github.com/vango-dev/varint/pkg/s3stream"
	"github.com/vango-dev/varint/pkg/varint"
)

func encodeCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var (
		typ   string
		raw   bool
		s3URI string
	)

	cmd := &cobra.Command{
		Use:   "encode [values...]",
		Short: "Encode decimal values",
		Long: `Encode decimal values of the given type.

Values come from the arguments, or from stdin separated by whitespace
when no arguments are given. The encoding is printed as hex unless
--raw is set. With --s3 the encoding is uploaded instead.

Examples:
  varint encode --type u32 300 1
  varint encode --type i64 --raw -1 > out.bin
  seq 1 100 | varint encode --type u8 --s3 s3://bucket/seq.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindFlag(typ)
			if err != nil {
				return err
			}
			buf, err := encodeValues(kind, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if s3URI != "" {
				cfg, err := loadCfg()
				if err != nil {
					return err
				}
				return upload(cmd.Context(), cfg, s3URI, buf, cmd.ErrOrStderr())
			}
			out := cmd.OutOrStdout()
			if raw {
				if _, err := out.Write(buf); err != nil {
					return errors.New(errors.CodeIO).Wrap(err)
				}
				return nil
			}
			fmt.Fprintln(out, hex.EncodeToString(buf))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "u64", "Integer type (u8..u64, i8..i64)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write raw bytes instead of hex")
	cmd.Flags().StringVar(&s3URI, "s3", "", "Upload the encoding to s3://bucket/key")
	cmd.MarkFlagsMutuallyExclusive("raw", "s3")

	return cmd
}

// encodeValues encodes args, or the whitespace separated values read
// from in when args is empty.
func encodeValues(kind varint.Kind, args []string, in io.Reader) ([]byte, error) {
	var buf []byte
	add := func(s string) error {
		var err error
		if buf, err = kind.AppendText(buf, s); err != nil {
			return errors.FromDecode(err, kind).WithDetail(fmt.Sprintf("%q is not a decimal %s.", s, kind))
		}
		return nil
	}

	if len(args) > 0 {
		for _, arg := range args {
			if err := add(arg); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}

	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		if err := add(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.New(errors.CodeIO).Wrap(err)
	}
	if len(buf) == 0 {
		return nil, errors.New(errors.CodeNoInput).
			WithSuggestion("Pass values as arguments or pipe them on stdin")
	}
	return buf, nil
}

func upload(ctx context.Context, cfg *config.Config, uri string, buf []byte, status io.Writer) error {
	bucket, key, err := s3stream.ParseURI(uri)
	if err != nil {
		return errors.New(errors.CodeBadS3URI).Wrap(err)
	}
	sink := s3stream.NewSink(newS3Client(cfg), bucket, key)
	if _, err := sink.Write(buf); err != nil {
		return errors.New(errors.CodeS3).Wrap(err)
	}
	if err := sink.Flush(ctx); err != nil {
		return errors.New(errors.CodeS3).Wrap(err)
	}
	success(status, "Uploaded %d bytes to %s", len(buf), uri)
	return nil
}

// newS3Client is replaced in tests.
var newS3Client = func(cfg *config.Config) s3stream.API {
	return s3stream.NewClient(s3stream.Options{
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		UsePathStyle:    cfg.S3.UsePathStyle,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		SessionToken:    cfg.S3.SessionToken,
	})
}
