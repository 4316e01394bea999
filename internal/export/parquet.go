package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// Compression names accepted by the encoder
const (
	CompressionSnappy = "snappy"
	CompressionGzip   = "gzip"
	CompressionNone   = "none"
)

type curveRecord struct {
	RunID        string   `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CurveType    string   `parquet:"name=curve_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Series       string   `parquet:"name=series, type=BYTE_ARRAY, convertedtype=UTF8"`
	Commodity    string   `parquet:"name=commodity, type=BYTE_ARRAY, convertedtype=UTF8"`
	Market       string   `parquet:"name=market, type=BYTE_ARRAY, convertedtype=UTF8"`
	Exchange     string   `parquet:"name=exchange, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date         int32    `parquet:"name=utc_timestamp, type=INT32, convertedtype=DATE"`
	ContractType string   `parquet:"name=contract_type1, type=BYTE_ARRAY, convertedtype=UTF8"`
	ContractName string   `parquet:"name=contract_type2, type=BYTE_ARRAY, convertedtype=UTF8"`
	TradeDate    *int64   `parquet:"name=utc_trade_date, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	Currency     string   `parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8"`
	Unit         string   `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price        *float64 `parquet:"name=price, type=DOUBLE, repetitiontype=OPTIONAL"`
	Open         *float64 `parquet:"name=open, type=DOUBLE, repetitiontype=OPTIONAL"`
	High         *float64 `parquet:"name=high, type=DOUBLE, repetitiontype=OPTIONAL"`
	Low          *float64 `parquet:"name=low, type=DOUBLE, repetitiontype=OPTIONAL"`
	OpenInterest *float64 `parquet:"name=oi, type=DOUBLE, repetitiontype=OPTIONAL"`
	Volume       *float64 `parquet:"name=volume, type=DOUBLE, repetitiontype=OPTIONAL"`
	Missing      bool     `parquet:"name=missing, type=BOOLEAN"`
	Filled       bool     `parquet:"name=filled, type=BOOLEAN"`
}

type fullYearRecord struct {
	Commodity      string  `parquet:"name=commodity, type=BYTE_ARRAY, convertedtype=UTF8"`
	Market         string  `parquet:"name=market, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date           int32   `parquet:"name=utc_timestamp, type=INT32, convertedtype=DATE"`
	ContractName   string  `parquet:"name=contract_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Source         string  `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price          float64 `parquet:"name=price, type=DOUBLE"`
	MetricFactor   float64 `parquet:"name=metric_change, type=DOUBLE"`
	MetricName     string  `parquet:"name=metrics_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	PricePerUnit   float64 `parquet:"name=price_per_unit, type=DOUBLE"`
	ExchangeRate   float64 `parquet:"name=exchange_rate, type=DOUBLE"`
	CurrencyChange string  `parquet:"name=currency_change, type=BYTE_ARRAY, convertedtype=UTF8"`
	PriceTarget    float64 `parquet:"name=price_target, type=DOUBLE"`
	ModelRunDate   int32   `parquet:"name=model_run_date, type=INT32, convertedtype=DATE"`
}

// memFile is an in-memory source.ParquetFile
type memFile struct {
	buf []byte
	off int64
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return &memFile{buf: m.buf}, nil }
func (m *memFile) Close() error                              { return nil }
func (m *memFile) Bytes() []byte                             { return m.buf }

func (m *memFile) Write(b []byte) (int, error) {
	m.buf = append(m.buf, b...)
	m.off = int64(len(m.buf))
	return len(b), nil
}

func (m *memFile) Read(b []byte) (int, error) {
	if m.off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(b, m.buf[m.off:])
	m.off += int64(n)
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.off + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memfile: negative position")
	}
	m.off = abs
	return abs, nil
}

func compressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case CompressionSnappy, "":
		return parquet.CompressionCodec_SNAPPY, nil
	case CompressionGzip:
		return parquet.CompressionCodec_GZIP, nil
	case CompressionNone:
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unknown parquet compression %q", name)
	}
}

// EncodeCurves renders curve rows as one parquet file
func EncodeCurves(rows []contracts.CurveRow, compression string) ([]byte, error) {
	records := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		rec := curveRecord{
			RunID:        r.RunID.String(),
			CurveType:    string(r.CurveType),
			Series:       r.Series,
			Commodity:    r.Commodity,
			Market:       r.Market,
			Exchange:     r.Exchange,
			Date:         epochDays(r.Date),
			ContractType: r.ContractType,
			ContractName: r.ContractName,
			Currency:     r.Currency,
			Unit:         r.Unit,
			Price:        optionalFloat(r.Price),
			Open:         optionalFloat(r.Open),
			High:         optionalFloat(r.High),
			Low:          optionalFloat(r.Low),
			OpenInterest: optionalFloat(r.OpenInterest),
			Volume:       optionalFloat(r.Volume),
			Missing:      r.Missing,
			Filled:       r.Filled,
		}
		if r.TradeDate != nil {
			ms := r.TradeDate.UnixMilli()
			rec.TradeDate = &ms
		}
		records = append(records, rec)
	}
	return encode(new(curveRecord), records, compression)
}

// EncodeFullYear renders merged full-year rows as one parquet file
func EncodeFullYear(rows []contracts.FullYearRow, compression string) ([]byte, error) {
	records := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		records = append(records, fullYearRecord{
			Commodity:      r.Commodity,
			Market:         r.Market,
			Date:           epochDays(r.Date),
			ContractName:   r.ContractName,
			Source:         string(r.Source),
			Price:          r.Price.InexactFloat64(),
			MetricFactor:   r.MetricFactor.InexactFloat64(),
			MetricName:     r.MetricName,
			PricePerUnit:   r.PricePerUnit.InexactFloat64(),
			ExchangeRate:   r.ExchangeRate.InexactFloat64(),
			CurrencyChange: r.CurrencyChange,
			PriceTarget:    r.PriceTarget.InexactFloat64(),
			ModelRunDate:   epochDays(r.ModelRunDate),
		})
	}
	return encode(new(fullYearRecord), records, compression)
}

func encode(schema interface{}, records []interface{}, compression string) ([]byte, error) {
	codec, err := compressionCodec(compression)
	if err != nil {
		return nil, err
	}

	mem := &memFile{}
	pw, err := writer.NewParquetWriter(mem, schema, 1)
	if err != nil {
		return nil, fmt.Errorf("new parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet: %w", err)
	}

	return bytes.Clone(mem.Bytes()), nil
}

func epochDays(t time.Time) int32 {
	return int32(contracts.Day(t).Unix() / 86400)
}

func optionalFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
