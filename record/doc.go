// Copyright © 2025 The Gomon Project.

/*
Package record serializes samples to the output sink. Records are append
only within a run and every write is flushed, so a killed monitor loses at
most the in flight sample. The backend is selected by the sink path's
extension: .db, .sqlite, and .sqlite3 select the sqlite recorder, anything
else comma separated text.
*/
package record
