// Package parquet implements Parquet export of weather store contents.
//
// Records are written in tall form, one row per present field value, so a
// single row shape covers every store schema regardless of width. The
// package provides:
//   - SummaryWriter/SummaryReader for tall rows
//   - Exporter to dump whole stores to per-kind Parquet files
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
package parquet
