package weldapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"

	"github.com/gasops/mtr-extract/internal/common"
)

const (
	getMTRFileDataPath    = "/api/AIMTRMetaData/GetMTRFileDatabyHeatNumber"
	addUpdateMetadataPath = "/api/AIMTRMetaData/AddUpdateMTRMetadata"
)

// Config for the certificate-authenticated weld management API client.
// PFXSource is a file path, or a base64-encoded certificate when no such
// file exists.
type Config struct {
	BaseURL       string
	PFXSource     string
	PFXPassword   string
	EncodedString string // credential string used to mint auth tokens
	Timeout       time.Duration
}

// Client talks to the weld management system over mutual TLS.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// MTRFile is one stored MTR document returned by heat-number lookup.
type MTRFile struct {
	HeatNumber       string
	CompanyMTRFileID int64
	PDF              []byte
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://oamsapi.gasopsiq.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	cert, err := loadClientCertificate(cfg.PFXSource, cfg.PFXPassword)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
		},
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		log:  logger,
	}, nil
}

// loadClientCertificate reads the PFX bundle (from disk, or inline base64)
// and converts it into a TLS client certificate.
func loadClientCertificate(source, password string) (tls.Certificate, error) {
	var pfxData []byte
	if st, err := os.Stat(source); err == nil && !st.IsDir() {
		pfxData, err = os.ReadFile(source)
		if err != nil {
			return tls.Certificate{}, common.WrapError(err, "read pfx certificate")
		}
	} else {
		decoded, decErr := base64.StdEncoding.DecodeString(source)
		if decErr != nil {
			return tls.Certificate{}, common.NewAppError("CONFIG_ERROR",
				"pfx source is neither a file nor valid base64", common.ErrConfig)
		}
		pfxData = decoded
	}

	blocks, err := pkcs12.ToPEM(pfxData, password)
	if err != nil {
		return tls.Certificate{}, common.WrapError(err, "decode pfx certificate")
	}
	var pemData []byte
	for _, b := range blocks {
		pemData = append(pemData, pem.EncodeToMemory(b)...)
	}
	cert, err := tls.X509KeyPair(pemData, pemData)
	if err != nil {
		return tls.Certificate{}, common.WrapError(err, "build client certificate")
	}
	return cert, nil
}

// FetchByHeatNumber looks an MTR document up by heat number and returns the
// decoded PDF plus its metadata identifiers.
func (c *Client) FetchByHeatNumber(ctx context.Context, heatNumber string) (*MTRFile, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("weldapi.fetch.start", "req_id", rid, "heat_number", heatNumber)

	token, err := AuthToken(c.cfg.EncodedString)
	if err != nil {
		return nil, err
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + getMTRFileDataPath +
		"?heatNumber=" + url.QueryEscape(heatNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, common.WrapError(err, "build fetch request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("auth-token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("weldapi.fetch.send_error", "req_id", rid, "error", err)
		return nil, common.WrapError(err, "fetch mtr data")
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		c.log.Error("weldapi.fetch.rejected", "req_id", rid, "status", resp.StatusCode)
		return nil, common.ServiceError(resp.StatusCode, string(body))
	}

	var envelope struct {
		Obj []struct {
			BinaryString     string `json:"BinaryString"`
			CompanyMTRFileID int64  `json:"CompanyMTRFileID"`
			HeatNumber       string `json:"HeatNumber"`
		} `json:"Obj"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, common.WrapError(err, "decode fetch response")
	}
	if len(envelope.Obj) == 0 {
		c.log.Warn("weldapi.fetch.empty", "req_id", rid, "heat_number", heatNumber)
		return nil, common.NewAppError("MTR_NOT_FOUND",
			fmt.Sprintf("no MTR data for heat number %s", heatNumber), common.ErrNotFound)
	}

	first := envelope.Obj[0]
	if first.BinaryString == "" {
		return nil, common.NewAppError("MTR_NO_BINARY",
			fmt.Sprintf("no binary string for heat number %s", heatNumber), common.ErrNotFound)
	}
	pdf, err := base64.StdEncoding.DecodeString(first.BinaryString)
	if err != nil {
		// some records carry raw bytes instead of base64
		pdf = []byte(first.BinaryString)
	}

	file := &MTRFile{
		HeatNumber:       heatNumber,
		CompanyMTRFileID: first.CompanyMTRFileID,
		PDF:              pdf,
	}
	if first.HeatNumber != "" {
		file.HeatNumber = first.HeatNumber
	}
	c.log.Info("weldapi.fetch.ok",
		"req_id", rid,
		"heat_number", file.HeatNumber,
		"company_mtr_file_id", file.CompanyMTRFileID,
		"pdf_bytes", len(file.PDF),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return file, nil
}

// PostMetadata uploads one extracted MTR document to AddUpdateMTRMetadata.
func (c *Client) PostMetadata(ctx context.Context, doc map[string]any) error {
	rid := uuid.New().String()
	start := time.Now()
	heat, _ := doc["HeatNumber"].(string)
	c.log.Info("weldapi.post.start", "req_id", rid, "heat_number", heat)

	token, err := AuthToken(c.cfg.EncodedString)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return common.WrapError(err, "encode metadata")
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + addUpdateMetadataPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return common.WrapError(err, "build post request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("auth-token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("weldapi.post.send_error", "req_id", rid, "error", err)
		return common.WrapError(err, "post metadata")
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		c.log.Error("weldapi.post.rejected", "req_id", rid, "status", resp.StatusCode)
		return common.ServiceError(resp.StatusCode, string(body))
	}

	c.log.Info("weldapi.post.ok",
		"req_id", rid,
		"heat_number", heat,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
