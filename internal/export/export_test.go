package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

var runID = uuid.MustParse("3f1c2d7a-5b8e-4c11-9a0f-2e6d8b4c7a10")

func sampleRows() []contracts.CurveRow {
	observed := time.Date(2019, 1, 2, 16, 30, 0, 0, time.UTC)
	return []contracts.CurveRow{
		{
			RunID: runID, CurveType: contracts.CurveMixed, Series: "mixed",
			Commodity: "power", Market: "de", Exchange: "eex",
			Date: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), Missing: true,
		},
		{
			RunID: runID, CurveType: contracts.CurveMixed, Series: "mixed",
			Commodity: "power", Market: "de", Exchange: "eex",
			Date: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), ContractType: "month", ContractName: "jan",
			TradeDate: &observed, Currency: "eur", Unit: "mwh",
			Price: decimal.NewNullDecimal(decimal.RequireFromString("41.5")), Volume: decimal.NewNullDecimal(decimal.NewFromInt(3)),
		},
	}
}

func readCurves(t *testing.T, data []byte) []curveRecord {
	t.Helper()
	pr, err := reader.NewParquetReader(&memFile{buf: data}, new(curveRecord), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	records := make([]curveRecord, int(pr.GetNumRows()))
	require.NoError(t, pr.Read(&records))
	return records
}

func TestEncodeCurves(t *testing.T) {
	for _, compression := range []string{CompressionSnappy, CompressionGzip, CompressionNone} {
		t.Run(compression, func(t *testing.T) {
			data, err := EncodeCurves(sampleRows(), compression)
			require.NoError(t, err)
			require.Greater(t, len(data), 8)
			assert.Equal(t, "PAR1", string(data[:4]))
			assert.Equal(t, "PAR1", string(data[len(data)-4:]))

			records := readCurves(t, data)
			require.Len(t, records, 2)
			assert.True(t, records[0].Missing)
			assert.Nil(t, records[0].Price)
			assert.Equal(t, "jan", records[1].ContractName)
			require.NotNil(t, records[1].Price)
			assert.InDelta(t, 41.5, *records[1].Price, 1e-9)
			assert.Equal(t, int32(17898), records[1].Date) // 2019-01-02
		})
	}
}

func TestEncodeCurves_UnknownCompression(t *testing.T) {
	_, err := EncodeCurves(sampleRows(), "zstd-ultra")
	assert.Error(t, err)
}

func TestEncodeFullYear(t *testing.T) {
	one := decimal.NewFromInt(1)
	rows := []contracts.FullYearRow{{
		Commodity: "gas", Market: "ttf", Date: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		Source: contracts.SourceForward, Price: decimal.RequireFromString("20.5"),
		MetricFactor: one, MetricName: contracts.NilTag, PricePerUnit: decimal.RequireFromString("20.5"),
		ExchangeRate: one, CurrencyChange: contracts.NilTag, PriceTarget: decimal.RequireFromString("20.5"),
		ModelRunDate: time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC),
	}}

	data, err := EncodeFullYear(rows, CompressionSnappy)
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data[:4]))
}

func TestKeys(t *testing.T) {
	date := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"forward-curves/mixed/2019-01-02/3f1c2d7a-5b8e-4c11-9a0f-2e6d8b4c7a10.parquet",
		CurveKey("forward-curves", contracts.CurveMixed, date, runID))
	assert.Equal(t, "forward-curves/fullyear/2019/coal_api2.parquet", FullYearKey("forward-curves", 2019, "coal", "api2"))
}

func TestRunIDOf(t *testing.T) {
	rows := sampleRows()
	assert.Equal(t, runID, RunIDOf(rows))

	rows[1].RunID = uuid.New()
	assert.NotEqual(t, runID, RunIDOf(rows))
	assert.NotEqual(t, uuid.Nil, RunIDOf(nil))
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, in)
	return &s3.PutObjectOutput{}, f.err
}

func TestExporter_ExportCurves(t *testing.T) {
	dir := t.TempDir()
	bucket := &fakeS3{}
	exp := NewExporter("forward-curves", CompressionSnappy, logger.Nop(),
		NewLocalStore(dir), NewS3Store(bucket, "curves-bucket", CompressionSnappy))

	date := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	locations, err := exp.ExportCurves(context.Background(), contracts.CurveMixed, date, runID, sampleRows())
	require.NoError(t, err)
	require.Len(t, locations, 2)

	local := filepath.Join(dir, "forward-curves", "mixed", "2019-01-02", runID.String()+".parquet")
	assert.Equal(t, local, locations[0])
	info, err := os.Stat(local)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Equal(t, "s3://curves-bucket/forward-curves/mixed/2019-01-02/"+runID.String()+".parquet", locations[1])
	require.Len(t, bucket.inputs, 1)
	assert.Equal(t, "curves-bucket", *bucket.inputs[0].Bucket)
}

func TestExporter_StoreFailure(t *testing.T) {
	bucket := &fakeS3{err: errors.New("access denied")}
	exp := NewExporter("p", CompressionNone, logger.Nop(), NewLocalStore(t.TempDir()), NewS3Store(bucket, "b", CompressionNone))

	locations, err := exp.ExportCurves(context.Background(), contracts.CurveSingle, time.Now(), runID, sampleRows())
	assert.Error(t, err)
	assert.Len(t, locations, 1)
}

func TestExporter_NoRows(t *testing.T) {
	exp := NewExporter("p", CompressionNone, logger.Nop(), NewLocalStore(t.TempDir()))
	locations, err := exp.ExportCurves(context.Background(), contracts.CurveMixed, time.Now(), runID, nil)
	assert.NoError(t, err)
	assert.Empty(t, locations)
}
