package main

import (
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
)

// newRouter builds the gin engine with templates, static assets, and the
// public routes. Middleware is injected so tests can run without tracking.
func newRouter(sender Sender, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.Default()
	r.Use(mw...)
	r.LoadHTMLGlob("templates/*")

	r.Static("/static", "./static")

	registerRoutes(r, sender)
	return r
}

func registerRoutes(r *gin.Engine, sender Sender) {
	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"aboutMeContent":      AboutMe,
			"projectOneContent":   ProjectOne,
			"projectTwoContent":   ProjectTwo,
			"projectThreeContent": ProjectThree,
			"projectFourContent":  ProjectFour,
		})
	})

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", contactFormHandler)

	// Per-field validation fragment, triggered on blur
	r.POST("/contact/validate", contactValidateHandler)

	// Handle contact form submission with HTMX
	r.POST("/contact", contactSubmitHandler(sender))

	// Work experience content
	r.GET("/work-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "work-content.html", gin.H{
			"jobTitle":  "Backend Developer",
			"company":   "Fernwood Systems",
			"startDate": "Mar 2022",
			"endDate":   "Present",
			"bulletPoints": []string{
				"Built and operate a fleet of Go services handling payment webhooks and order events, sustaining five thousand requests per minute at p99 under 80ms",
				"Cut infrastructure spend by a third by consolidating three legacy Node services into a single Go binary with SQLite-backed queues",
				"Introduced structured request logging and tracing, shrinking median incident diagnosis time from hours to minutes",
			},
			"jobTitle2":  "Software Engineer",
			"company2":   "Harbourline Media",
			"startDate2": "Jun 2019",
			"endDate2":   "Feb 2022",
			"bulletPoints2": []string{
				"Developed the content ingestion pipeline that normalized feeds from forty publishing partners into a common schema",
				"Shipped an internal CLI for editors to schedule and preview articles, replacing a spreadsheet workflow used by three teams",
				"Led the migration of image processing from on-request resizing to a precomputed variant store, halving page load times",
			},
		})
	})

	// Education content
	r.GET("/education-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "education-content.html", gin.H{
			"degree":      "BSc Computer Science",
			"institution": "University of Leeds",
			"startDate":   "Sept 2015",
			"endDate":     "Jun 2019",
			"bulletPoints": []string{
				"First class honours",
				"Final year project: a distributed key-value store with configurable consistency levels",
				"Coursework focus: operating systems, networks, and compiler construction",
			},
			"degree2":      "Certified Kubernetes Application Developer",
			"institution2": "Cloud Native Computing Foundation",
			"startDate2":   "Jan 2023",
			"endDate2":     "Present",
			"bulletPoints2": []string{
				"Credential covering workload design, observability, and application lifecycle management",
			},
		})
	})

	// Liveness probe for the reverse proxy
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "portfolio.db"
	}
	initDB(dbPath)

	initAdminToken()
	initVisitorTracking()

	r := newRouter(senderFromEnv(), visitorTrackingMiddleware())
	setupAdminRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
