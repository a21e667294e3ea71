package release

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/weftci/weft/internal/config"
	oerrors "github.com/weftci/weft/internal/errors"
	"github.com/weftci/weft/internal/output"
)

// Upload publishes the given artifact files to the configured index.
// The password comes from the environment variable named by
// release.password_env; a missing password aborts before any request.
func Upload(ctx context.Context, cfg *config.Config, version string, files []string) error {
	if cfg.Release.Index == "" {
		return oerrors.NewConfigError("release.index is not configured", "release.index", "")
	}

	password := os.Getenv(cfg.Release.PasswordEnv)
	if password == "" {
		return oerrors.NewCredentialsError(
			"index password is not set",
			map[string]string{"variable": cfg.Release.PasswordEnv},
			"Export "+cfg.Release.PasswordEnv+" before releasing",
		)
	}

	if strings.HasPrefix(cfg.Release.Index, "s3://") {
		return uploadS3(ctx, cfg, password, files)
	}
	return uploadIndex(ctx, cfg, version, password, files)
}

// uploadIndex posts each artifact to an https package index, one multipart
// request per file, authenticated with basic auth.
func uploadIndex(ctx context.Context, cfg *config.Config, version, password string, files []string) error {
	client := &http.Client{}

	for _, file := range files {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)

		fields := map[string]string{
			":action":          "file_upload",
			"protocol_version": "1",
			"name":             cfg.Project.Name,
			"version":          version,
		}
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				return fmt.Errorf("encoding upload form: %w", err)
			}
		}

		part, err := mw.CreateFormFile("content", filepath.Base(file))
		if err != nil {
			return fmt.Errorf("encoding upload form: %w", err)
		}
		src, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("opening artifact: %w", err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("reading artifact %s: %w", file, err)
		}
		if err := mw.Close(); err != nil {
			return fmt.Errorf("encoding upload form: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Release.Index, body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.SetBasicAuth(cfg.Release.Username, password)

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", filepath.Base(file), err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("index rejected %s: %s", filepath.Base(file), resp.Status)
		}

		output.Info("uploaded", "artifact", filepath.Base(file), "index", cfg.Release.Index)
	}
	return nil
}

// uploadS3 puts each artifact into an s3://bucket/prefix object store.
// The endpoint comes from WEFT_S3_ENDPOINT; the configured username is the
// access key and the index password is the secret key.
func uploadS3(ctx context.Context, cfg *config.Config, password string, files []string) error {
	bucket, prefix, err := splitS3URL(cfg.Release.Index)
	if err != nil {
		return err
	}

	endpoint := os.Getenv("WEFT_S3_ENDPOINT")
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Release.Username, password, ""),
		Secure: true,
		Region: cfg.Release.Region,
	})
	if err != nil {
		return fmt.Errorf("creating object store client: %w", err)
	}

	for _, file := range files {
		object := filepath.Base(file)
		if prefix != "" {
			object = prefix + "/" + object
		}
		if _, err := client.FPutObject(ctx, bucket, object, file, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		}); err != nil {
			return fmt.Errorf("uploading %s: %w", object, err)
		}
		output.Info("uploaded", "artifact", object, "bucket", bucket)
	}
	return nil
}

// splitS3URL splits s3://bucket/prefix into bucket and prefix.
func splitS3URL(raw string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(raw, "s3://")
	if rest == raw || rest == "" {
		return "", "", fmt.Errorf("invalid s3 index URL %q", raw)
	}
	parts := strings.SplitN(rest, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		prefix = strings.Trim(parts[1], "/")
	}
	return bucket, prefix, nil
}
