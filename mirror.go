// Package s3mirror provides the mirror engine: it copies every file under
// a source endpoint to a destination endpoint, one file at a time.
package s3mirror

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mlcloudtools/s3mirror/errors"
)

// mirror copies the full file tree from src to dst sequentially, preserving
// relative paths. Files that already exist at the destination are skipped
// unless cfg.Overwrite is set. The first transfer failure aborts the mirror;
// files already copied stay in place.
func (c *Client) mirror(
	ctx context.Context,
	op string,
	src, dst endpoint,
	cfg *TransferConfig,
	root string,
) (*MirrorResult, error) {
	startTime := time.Now()

	files, err := src.list(ctx)
	if err != nil {
		return nil, errors.NewTransferError(op, err)
	}

	result := &MirrorResult{Root: root}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewTransferError(op, err)
		}

		if !cfg.Overwrite {
			exists, err := dst.exists(ctx, rel)
			if err != nil {
				return nil, errors.NewTransferError(op, err).WithPath(dst.locate(rel))
			}
			if exists {
				c.log.WithFields(logrus.Fields{
					"source":      src.locate(rel),
					"destination": dst.locate(rel),
				}).Debug("destination exists, skipping")
				result.FilesSkipped++
				continue
			}
		}

		n, err := transfer(ctx, src, dst, rel)
		if err != nil {
			return nil, errors.NewTransferError(op, err).WithPath(dst.locate(rel))
		}

		c.log.WithFields(logrus.Fields{
			"source":      src.locate(rel),
			"destination": dst.locate(rel),
			"bytes":       n,
		}).Debug("copied")
		result.FilesCopied++
		result.BytesCopied += n
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// transfer moves a single file between endpoints and reports its size.
func transfer(ctx context.Context, src, dst endpoint, rel string) (int64, error) {
	body, size, err := src.open(ctx, rel)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	if err := dst.write(ctx, rel, body, size); err != nil {
		return 0, err
	}
	return size, nil
}
