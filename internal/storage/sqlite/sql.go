package sqlite

const createReviewsSQL = `
CREATE TABLE IF NOT EXISTS reviews (
    id           INTEGER PRIMARY KEY,
    type         TEXT,
    status       TEXT,
    rating       REAL,
    publicReview TEXT,
    categories   TEXT NOT NULL DEFAULT '[]',
    submittedAt  TEXT,
    guestName    TEXT,
    listingName  TEXT NOT NULL,
    approved     INTEGER NOT NULL DEFAULT 0
)
`

// approved is a literal 0: a re-sync always resets approval.
const upsertReviewSQL = `
INSERT OR REPLACE INTO reviews
  (id, type, status, rating, publicReview, categories, submittedAt, guestName, listingName, approved)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
`

const listReviewsSQL = `
SELECT id, type, status, rating, publicReview, categories, submittedAt, guestName, listingName, approved
FROM reviews
ORDER BY id
`

const setApprovalSQL = `UPDATE reviews SET approved = ? WHERE id = ?`
