package mysql

const insertExportSQL = `
INSERT INTO report_exports
  (format, path, user_id, total_bookings, own_bookings, generated_at)
VALUES
  (?, ?, ?, ?, ?, ?)
`

// Newest first; id breaks ties within the same millisecond.
const recentExportsSQL = `
SELECT id, format, path, user_id, total_bookings, own_bookings, generated_at
FROM report_exports
ORDER BY generated_at DESC, id DESC
LIMIT ?
`
