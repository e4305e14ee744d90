package thredds

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icodeforyou/rapsounding-go/metrics"
)

const latestCatalog = `<?xml version="1.0" encoding="UTF-8"?>
<catalog xmlns="http://www.unidata.ucar.edu/namespaces/thredds/InvCatalog/v1.0"
         xmlns:xlink="http://www.w3.org/1999/xlink" name="RAP CONUS 13km" version="1.0.1">
  <service name="GridServices" serviceType="Compound" base="">
    <service name="OPENDAP" serviceType="OPENDAP" base="/thredds/dodsC/"/>
    <service name="NetcdfSubset" serviceType="NetcdfSubset" base="/thredds/ncss/grid/"/>
    <service name="HTTPServer" serviceType="HTTPServer" base="/thredds/fileServer/"/>
  </service>
  <dataset name="RR_CONUS_13km_20240501_0900.grib2"
           ID="grib/NCEP/RAP/CONUS_13km/RR_CONUS_13km_20240501_0900.grib2"
           urlPath="grib/NCEP/RAP/CONUS_13km/RR_CONUS_13km_20240501_0900.grib2">
    <dataSize units="Mbytes">520.4</dataSize>
    <serviceName>GridServices</serviceName>
  </dataset>
</catalog>`

const nestedCatalog = `<catalog name="nested">
  <service name="all" serviceType="Compound" base="">
    <service name="odap" serviceType="OPENDAP" base="/dodsC/"/>
  </service>
  <service name="http" serviceType="HTTPServer" base="http://files.example.com/f/"/>
  <dataset name="collection">
    <metadata inherited="true"><serviceName>all</serviceName></metadata>
    <dataset name="first" urlPath="a/first.grib2"/>
    <dataset name="second" urlPath="a/second.grib2">
      <access serviceName="http" urlPath="raw/second.grib2"/>
    </dataset>
  </dataset>
</catalog>`

func testClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    metrics.NewForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestCatalogXMLURL(t *testing.T) {
	assert.Equal(t,
		"https://thredds.ucar.edu/thredds/catalog/grib/NCEP/RAP/CONUS_13km/latest.xml",
		CatalogXMLURL("https://thredds.ucar.edu/thredds/catalog/grib/NCEP/RAP/CONUS_13km/latest.html"))
	assert.Equal(t, "http://x/catalog.xml", CatalogXMLURL("http://x/catalog.xml"))
}

func TestClient_Catalog_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/thredds/catalog/grib/NCEP/RAP/CONUS_13km/latest.xml", r.URL.Path)
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, latestCatalog)
	}))
	defer srv.Close()

	c := testClient()
	cat, err := c.Catalog(context.Background(), srv.URL+"/thredds/catalog/grib/NCEP/RAP/CONUS_13km/latest.html")
	require.NoError(t, err)

	assert.Equal(t, "RAP CONUS 13km", cat.Name)
	require.Len(t, cat.Services, 1)
	assert.Len(t, cat.Services[0].Services, 3)

	ds, err := cat.FirstDataset()
	require.NoError(t, err)
	assert.Equal(t, "RR_CONUS_13km_20240501_0900.grib2", ds.Name)
	assert.Equal(t, "GridServices", ds.ServiceName)
	assert.Equal(t,
		srv.URL+"/thredds/dodsC/grib/NCEP/RAP/CONUS_13km/RR_CONUS_13km_20240501_0900.grib2",
		ds.AccessURLs["OPENDAP"])
	assert.Equal(t,
		srv.URL+"/thredds/ncss/grid/grib/NCEP/RAP/CONUS_13km/RR_CONUS_13km_20240501_0900.grib2",
		ds.AccessURLs["NetcdfSubset"])
	assert.Equal(t, float64(len(latestCatalog)), testutil.ToFloat64(c.metrics.FetchBytes.WithLabelValues("catalog")))
}

func TestClient_Catalog_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "catalog not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().Catalog(context.Background(), srv.URL+"/latest.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "catalog not found")
}

func TestClient_Catalog_BadXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "<catalog><dataset")
	}))
	defer srv.Close()

	_, err := testClient().Catalog(context.Background(), srv.URL+"/latest.xml")
	assert.Error(t, err)
}

func TestParseCatalog_Nested(t *testing.T) {
	cat, err := ParseCatalog([]byte(nestedCatalog), "http://tds.example.com/thredds/catalog/x/catalog.xml")
	require.NoError(t, err)

	require.Len(t, cat.Datasets, 2)
	assert.Equal(t, "first", cat.Datasets[0].Name)
	assert.Equal(t, "all", cat.Datasets[0].ServiceName)
	assert.Equal(t, map[string]string{
		"OPENDAP": "http://tds.example.com/dodsC/a/first.grib2",
	}, cat.Datasets[0].AccessURLs)

	assert.Equal(t, map[string]string{
		"OPENDAP":    "http://tds.example.com/dodsC/a/second.grib2",
		"HTTPServer": "http://files.example.com/f/raw/second.grib2",
	}, cat.Datasets[1].AccessURLs)
}

func TestFirstDataset_Empty(t *testing.T) {
	cat, err := ParseCatalog([]byte(`<catalog name="empty"/>`), "http://x/catalog.xml")
	require.NoError(t, err)

	_, err = cat.FirstDataset()
	assert.ErrorIs(t, err, ErrNoDatasets)
}

func TestClient_GridSubset(t *testing.T) {
	payload := []byte("CDF\x01 not really netcdf")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/thredds/ncss/grid/rap.grib2", r.URL.Path)
		assert.Equal(t, SoundingVariables, q["var"])
		assert.Equal(t, "43.1600", q.Get("north"))
		assert.Equal(t, "42.1600", q.Get("south"))
		assert.Equal(t, "-82.9100", q.Get("east"))
		assert.Equal(t, "-83.9100", q.Get("west"))
		assert.Equal(t, "all", q.Get("temporal"))
		assert.Equal(t, "netcdf3", q.Get("accept"))
		assert.Equal(t, "true", q.Get("addLatLon"))
		w.Write(payload)
	}))
	defer srv.Close()

	c := testClient()
	q := AroundPoint(SoundingVariables, 42.66, -83.41, 0.5)
	path, err := c.GridSubset(context.Background(), srv.URL+"/thredds/ncss/grid/rap.grib2", q, t.TempDir())
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, float64(len(payload)), testutil.ToFloat64(c.metrics.FetchBytes.WithLabelValues("subset")))
}

func TestClient_GridSubset_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad var", http.StatusBadRequest)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := testClient().GridSubset(context.Background(), srv.URL+"/ncss", AroundPoint(nil, 0, 0, 1), dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
