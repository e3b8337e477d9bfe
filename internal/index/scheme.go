package index

var (
	bPosts  = []byte("posts")  // slug -> ArticleMeta json
	bPhotos = []byte("photos") // id -> Photo json

	bIdxPosts  = []byte("idx_posts")  // dateKey -> 1
	bIdxPhotos = []byte("idx_photos") // dateKey -> 1
	bIdxCat    = []byte("idx_cat")    // category -> sub-bucket of dateKey
	bIdxLoc    = []byte("idx_loc")    // location -> sub-bucket of dateKey

	bRender = []byte("render") // route -> fingerprint

	rebuilt = [][]byte{bPosts, bPhotos, bIdxPosts, bIdxPhotos, bIdxCat, bIdxLoc}
)
