// Package dataprocessing ingests tabular news and company data.
//
// News files may be CSV or Excel workbooks. The header row is detected within the
// first rows of the file and columns are matched by name, so extra columns and
// leading title rows are tolerated:
//
//	date,company,headline,news_type,industry
//	2024-03-01,TechNova,TechNova closed Series B in AI/ML sector,funding,AI/ML
//
// Dates are accepted as YYYY-MM-DD, "YYYY-MM-DD HH:MM:SS", DD/MM/YYYY, RFC 3339
// or Excel serial numbers. News types are lower-cased and trimmed; whether a type
// is known is decided by the scoring engine, not here.
//
// Every row level failure is a *leads.RecordError wrapping leads.ErrMalformedRecord
// with the 1-based source row set.
//
// FileSource adapts a file path to leads.RecordSource.
package dataprocessing
