package mysql

const createReviewsSQL = `
CREATE TABLE IF NOT EXISTS reviews (
  id           BIGINT       NOT NULL PRIMARY KEY,
  type         VARCHAR(64)  NULL,
  status       VARCHAR(64)  NULL,
  rating       DOUBLE       NULL,
  publicReview TEXT         NULL,
  categories   TEXT         NOT NULL,
  submittedAt  VARCHAR(32)  NULL,
  guestName    VARCHAR(255) NULL,
  listingName  VARCHAR(255) NOT NULL,
  approved     TINYINT(1)   NOT NULL DEFAULT 0,
  KEY idx_reviews_listing (listingName)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// REPLACE deletes then inserts, so every column (approved included) is reset.
const upsertReviewSQL = `
REPLACE INTO reviews
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

// MySQL reports 0 affected rows when the value is unchanged; this tells the
// two cases apart.
const reviewExistsSQL = `SELECT 1 FROM reviews WHERE id = ?`
