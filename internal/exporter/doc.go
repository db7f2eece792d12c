// Package exporter writes research output as flat CSV files and XLSX report
// workbooks. CSV files get a UTF-8 BOM by default so spreadsheet tools detect
// the encoding.
package exporter
