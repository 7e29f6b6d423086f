package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"rezo-marketplace/internal/client"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: client <command> [flags]

commands:
  signup     -email -password                        create an account
  verify     -code [-reset]                          redeem a 6-digit code
  login      -email -password [-remember]            log in
  details    -first -last -phone -dob -cnic -gender  save basic details
  photo      -file                                   upload profile photo
  additional -nationality -address -occupation
             -institution -document -cnic-front
             -cnic-back                              save additional details
  apply      -kind OWNERSHIP|BUILDER                 apply for a role
  status     -user <id>                              show role status
  logout                                             log out`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	baseURL := os.Getenv("REZO_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000/api/v1"
	}

	home, _ := os.UserHomeDir()
	store := client.NewTokenStore(filepath.Join(home, ".rezo", "session.json"))
	api := client.New(baseURL, store)
	onboarding := client.NewOnboarding(api)
	roleFlow := client.NewRoleRequestFlow(api)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		_ = fs.Parse(os.Args[2:])

		nav, fieldErrs, err := onboarding.Signup(ctx, *email, *password)
		if err != nil {
			for field, msg := range fieldErrs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
			log.Fatalf("signup failed: %v", err)
		}
		fmt.Printf("Account created. Next: %s\n", nav.Path)

	case "verify":
		fs := flag.NewFlagSet("verify", flag.ExitOnError)
		code := fs.String("code", "", "6-digit code")
		reset := fs.Bool("reset", false, "verify a password reset code")
		_ = fs.Parse(os.Args[2:])

		nav, err := onboarding.VerifyCode(ctx, *code, *reset)
		if err != nil {
			log.Fatalf("verification failed: %v", err)
		}
		fmt.Printf("Code accepted. Next: %s\n", nav.Path)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		remember := fs.Bool("remember", false, "remember this session")
		_ = fs.Parse(os.Args[2:])

		if _, err := api.Login(ctx, *email, *password, *remember); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Println("Logged in.")

	case "details":
		fs := flag.NewFlagSet("details", flag.ExitOnError)
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		phone := fs.String("phone", "", "phone number")
		dob := fs.String("dob", "", "date of birth (YYYY-MM-DD)")
		cnic := fs.String("cnic", "", "national ID number")
		gender := fs.String("gender", "", "male, female or other")
		_ = fs.Parse(os.Args[2:])

		nav, fieldErrs, err := onboarding.SubmitUserDetails(ctx, *first, *last, *phone, *dob, *cnic, *gender)
		if err != nil {
			for field, msg := range fieldErrs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
			log.Fatalf("saving details failed: %v", err)
		}
		fmt.Printf("Details saved. Next: %s\n", nav.Path)

	case "photo":
		fs := flag.NewFlagSet("photo", flag.ExitOnError)
		file := fs.String("file", "", "image file path")
		_ = fs.Parse(os.Args[2:])

		info, err := os.Stat(*file)
		if err != nil {
			log.Fatalf("cannot read file: %v", err)
		}
		if err := client.CheckImage(mimeByExt(*file), info.Size()); err != nil {
			log.Fatalf("invalid photo: %v", err)
		}

		nav, err := onboarding.SubmitPhoto(ctx, *file)
		if err != nil {
			log.Fatalf("upload failed: %v", err)
		}
		fmt.Printf("Photo uploaded. Next: %s\n", nav.Path)

	case "additional":
		fs := flag.NewFlagSet("additional", flag.ExitOnError)
		nationality := fs.String("nationality", "", "nationality")
		address := fs.String("address", "", "current address")
		occupation := fs.String("occupation", "", "studying or working")
		institution := fs.String("institution", "", "institution or company name")
		document := fs.String("document", "", "identity document PDF")
		cnicFront := fs.String("cnic-front", "", "CNIC front PDF")
		cnicBack := fs.String("cnic-back", "", "CNIC back PDF")
		_ = fs.Parse(os.Args[2:])

		nav, fieldErrs, err := onboarding.SubmitAdditionalInfo(ctx, client.AdditionalInfo{
			Nationality:          *nationality,
			CurrentAddress:       *address,
			IsStudyingOrWorking:  *occupation,
			InstitutionOrCompany: *institution,
			DocumentPath:         *document,
			CnicFrontPath:        *cnicFront,
			CnicBackPath:         *cnicBack,
		})
		if err != nil {
			for field, msg := range fieldErrs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
			log.Fatalf("saving details failed: %v", err)
		}
		fmt.Printf("Details saved. Next: %s\n", nav.Path)

	case "apply":
		fs := flag.NewFlagSet("apply", flag.ExitOnError)
		kind := fs.String("kind", "OWNERSHIP", "OWNERSHIP or BUILDER")
		_ = fs.Parse(os.Args[2:])

		nav, err := roleFlow.Apply(ctx, client.RequestKind(*kind))
		if err != nil {
			if nav.Path != "" {
				fmt.Fprintf(os.Stderr, "Complete your profile first: %s\n", nav.Path)
				log.Fatalf("apply failed: %v", err)
			}
			log.Fatalf("apply failed: %s", client.ApplyFailureMessage(err))
		}
		fmt.Printf("Request status: %s\n", roleFlow.Status(client.RequestKind(*kind)))

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		userID := fs.Uint("user", 0, "user id")
		_ = fs.Parse(os.Args[2:])

		if err := roleFlow.Reconcile(ctx, uint(*userID)); err != nil {
			log.Fatalf("status check failed: %v", err)
		}
		for _, kind := range []client.RequestKind{client.KindOwnership, client.KindBuilder} {
			fmt.Printf("%-10s holds=%v action=%s status=%s\n",
				kind, roleFlow.HoldsRole(kind), roleFlow.Display(kind), roleFlow.Status(kind))
		}

	case "logout":
		if err := api.Logout(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "server logout failed (local state cleared): %v\n", err)
		}
		fmt.Println("Logged out.")

	default:
		usage()
	}
}

// mimeByExt guesses a content type from the file extension, enough
// for the local pre-upload check.
func mimeByExt(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
