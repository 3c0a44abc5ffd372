package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "date,providerDept,serviceName,unitPrice,receiverDept,quantity,totalAmount\n" +
	"2026-10-01,IT แผนก,บริการ IT Support,100,สำนักงานใหญ่,2,200\n" +
	"2026-10-02,IT แผนก,บริการ IT Support,100,สาขา A,3,300\n"

func writeSample(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	measure = "quantity"
	outPath = ""
	force = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", "config.yaml"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCrosstabCommand(t *testing.T) {
	file := writeSample(t, "records.csv", sampleCSV)

	out, err := run(t, "crosstab", file)
	require.NoError(t, err)
	assert.Contains(t, out, "สำนักงานใหญ่")
	assert.Contains(t, out, "บริการ IT Support")

	out, err = run(t, "crosstab", file, "--measure", "amount")
	require.NoError(t, err)
	assert.Contains(t, out, "500")
}

func TestValidateCommand(t *testing.T) {
	good := writeSample(t, "good.csv", sampleCSV)
	bad := writeSample(t, "bad.csv", "date,providerDept\n2026-10-01,IT\n")

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "good.csv: 2 record(s)")

	out, err = run(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "invalid file header")
}

func TestWorkbookCommand(t *testing.T) {
	file := writeSample(t, "records.csv", sampleCSV)

	out, err := run(t, "workbook", file)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 record(s))")

	f, err := excelize.OpenFile(filepath.Join(filepath.Dir(file), "records.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Transactions", "Crosstab"}, f.GetSheetList())

	_, err = run(t, "workbook", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "workbook", file, "--force")
	require.NoError(t, err)
}
